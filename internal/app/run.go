package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/buildmerge/internal/analyzer"
	"github.com/vk/buildmerge/internal/builder"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/platform"
)

// Run executes the analysis: builds the validated target graph, runs the
// concurrent analyzer over it, and writes the report to reportW.
func (a *App) Run(ctx context.Context, reportW io.Writer) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.")

	graph, err := builder.Build(ctx, a.model)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No targets found, nothing to analyze.")
		return nil
	}

	sdk := platform.SDK{Root: a.config.SDKRoot}
	an := analyzer.New(graph, a.config.WorkerCount, sdk, a.config.DerivedRoot)
	if err := an.Run(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := a.writeReport(reportW, graph, an); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	a.logger.Debug("App.Run finished.")
	return nil
}
