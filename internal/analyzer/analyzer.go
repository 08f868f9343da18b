/*
Package analyzer drives the per-target analysis over the validated graph. A
pool of workers consumes ready nodes, runs the aggregation core for each
target, and unlocks dependents as their dependency counters drain. A failed
target cancels the run and skips everything downstream of it.
*/
package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/buildmerge/internal/builder"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/platform"
	"github.com/vk/buildmerge/internal/xlang"
)

// Analyzer runs one analysis pass over a target graph.
type Analyzer struct {
	graph       *builder.Graph
	workers     int
	sdk         platform.SDK
	derivedRoot string

	wg sync.WaitGroup

	mu       sync.Mutex
	exported map[string]xlang.LinkContext
	firstErr error
}

// New returns an Analyzer over the given graph.
func New(graph *builder.Graph, workers int, sdk platform.SDK, derivedRoot string) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		graph:       graph,
		workers:     workers,
		sdk:         sdk,
		derivedRoot: derivedRoot,
		exported:    make(map[string]xlang.LinkContext),
	}
}

// Run analyzes every target. It returns the first analysis failure; results
// of completed targets remain readable on their nodes either way.
func (a *Analyzer) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Analysis run started.", "targets", len(a.graph.Nodes), "workers", a.workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readyChan := make(chan *builder.Node, len(a.graph.Nodes))
	a.wg.Add(len(a.graph.Nodes))
	for _, n := range a.graph.Roots() {
		readyChan <- n
	}

	for i := 0; i < a.workers; i++ {
		go a.worker(ctx, readyChan, cancel, i)
	}

	a.wg.Wait()
	close(readyChan)

	a.mu.Lock()
	err := a.firstErr
	a.mu.Unlock()
	if err != nil {
		logger.Error("Analysis run failed.", "error", err)
		return err
	}
	logger.Info("Analysis run finished.")
	return nil
}

// ExportedLink returns the link context a completed target exports to its
// dependents: its own archive, if any, followed by its merged dependency
// link inputs.
func (a *Analyzer) ExportedLink(id string) (xlang.LinkContext, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	lc, ok := a.exported[id]
	return lc, ok
}

func (a *Analyzer) worker(ctx context.Context, readyChan chan *builder.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for n := range readyChan {
		workerLogger := logger.With("worker_id", workerID, "node_id", n.ID)

		if ctx.Err() != nil {
			if n.MarkSkipped(ctx.Err()) {
				a.wg.Done()
			}
			continue
		}

		workerLogger.Debug("Worker picked up target.")
		res, err := a.analyzeTarget(ctx, n)
		if err != nil {
			workerLogger.Error("Target analysis failed.", "error", err)
			n.Err = err
			a.recordErr(err)
			cancel()
			a.skipDependents(ctx, n)
			a.wg.Done()
			continue
		}

		n.Result = res
		a.storeExported(n)
		workerLogger.Debug("Target analysis succeeded.")

		dependents, err := a.graph.Dependents(n.ID)
		if err != nil {
			workerLogger.Error("Failed to query dependents.", "error", err)
		} else {
			for _, id := range dependents {
				dep := a.graph.Nodes[id]
				if dep.DecrementDepCount() == 0 {
					readyChan <- dep
				}
			}
		}
		a.wg.Done()
	}
}

// skipDependents marks everything downstream of a failed node as skipped so
// the run can drain without scheduling them.
func (a *Analyzer) skipDependents(ctx context.Context, n *builder.Node) {
	logger := ctxlog.FromContext(ctx)

	dependents, err := a.graph.Dependents(n.ID)
	if err != nil {
		logger.Error("Failed to query dependents for skip.", "node_id", n.ID, "error", err)
		return
	}
	for _, id := range dependents {
		dep := a.graph.Nodes[id]
		if dep.MarkSkipped(fmt.Errorf("dependency %s failed", n.ID)) {
			logger.Debug("Skipping dependent of failed target.", "node_id", id)
			a.wg.Done()
			a.skipDependents(ctx, dep)
		}
	}
}

func (a *Analyzer) recordErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firstErr == nil {
		a.firstErr = err
	}
}

func (a *Analyzer) storeExported(n *builder.Node) {
	inputs := []xlang.LinkInput{}
	if archive, ok := n.Result.CompiledArchive(); ok {
		inputs = append(inputs, xlang.LinkInput{Library: archive})
	}
	inputs = append(inputs, n.Result.CrossLinkContext().Inputs...)

	a.mu.Lock()
	a.exported[n.ID] = xlang.LinkContext{Inputs: inputs}
	a.mu.Unlock()
}
