package aggregate

import (
	"sync"

	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/compilation"
	"github.com/vk/buildmerge/internal/descriptor"
	"github.com/vk/buildmerge/internal/xlang"
)

// Result is the immutable outcome of one target's aggregation: the descriptor
// re-exported to dependents, the target's own compilation context, and the
// accumulated dependency link contexts. Safe for concurrent reads.
type Result struct {
	mode         Mode
	desc         *descriptor.Descriptor
	compileCtx   *compilation.Context
	linkContexts []xlang.LinkContext
	artifacts    *compilation.Artifacts

	mergeOnce  sync.Once
	mergedLink xlang.LinkContext
}

// Mode returns the mode the target was analyzed in.
func (r *Result) Mode() Mode { return r.mode }

// Descriptor returns the export bundle for dependents.
func (r *Result) Descriptor() *descriptor.Descriptor { return r.desc }

// CompilationContext returns the target's finalized compilation context.
func (r *Result) CompilationContext() *compilation.Context { return r.compileCtx }

// LinkContexts returns the unmerged per-dependency link contexts, in
// accumulation order. Callers must not modify the returned slice.
func (r *Result) LinkContexts() []xlang.LinkContext { return r.linkContexts }

// CompiledArchive returns the archive the target's compile step produces.
// Absent when no compilation artifacts were supplied or no archive was
// produced.
func (r *Result) CompiledArchive() (artifact.Artifact, bool) {
	if r.artifacts == nil {
		return artifact.Artifact{}, false
	}
	return r.artifacts.Archive()
}

// CrossCompileContext lowers the compilation context into the flattened shape
// the action-generation subsystem consumes.
func (r *Result) CrossCompileContext() xlang.CompileContext {
	return r.compileCtx.CrossCompileContext()
}

// CrossLinkContext merges the dependency link contexts in order. The merge is
// performed at most once, on first request; results shared across dependents
// may call this concurrently.
func (r *Result) CrossLinkContext() xlang.LinkContext {
	r.mergeOnce.Do(func() {
		r.mergedLink = xlang.MergeLinkContexts(r.linkContexts)
	})
	return r.mergedLink
}

// CrossInfo combines the compile and link views.
func (r *Result) CrossInfo() xlang.Info {
	return xlang.Info{
		Compile: r.CrossCompileContext(),
		Link:    r.CrossLinkContext(),
	}
}
