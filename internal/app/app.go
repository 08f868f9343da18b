// Package app wires the application together: logger, manifest loader, graph
// builder, analyzer, and report writer.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	logW    io.Writer
	logger  *slog.Logger
	config  *Config
	model   *config.Model
}

// NewApp constructs the application: it configures an isolated logger and
// loads the manifest tree into the config model. A failure to load the
// manifests is a fatal startup error and panics; the CLI entrypoint recovers
// and turns it into a clean exit.
func NewApp(logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifests: %w", err))
	}
	logger.Debug("Manifests loaded into unified model.", "targets", len(model.Targets))

	return &App{
		logW:   logW,
		logger: logger,
		config: cfg,
		model:  model,
	}
}

// Model returns the loaded config model. Primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
