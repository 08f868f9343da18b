/*
Package aggregate is the facade of the per-target analysis core. One
Aggregator serves exactly one target: callers feed it the target's own
declarations and its dependencies' exports through accumulation calls, then a
single Finalize produces the immutable Result consumed by the target's own
compile/link planning and re-exported to dependents.

The Aggregator moves Empty → Accumulating → Finalized. Single-valued
attributes may be set at most once, dependency accumulation is cumulative,
and every contract violation (double set, double finalize, direct-scope
foreign contexts outside LinkOnly mode) panics: these are caller bugs, not
environmental failures.
*/
package aggregate

import (
	"context"

	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/compilation"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/descriptor"
	"github.com/vk/buildmerge/internal/modulemap"
	"github.com/vk/buildmerge/internal/platform"
	"github.com/vk/buildmerge/internal/xlang"
)

// Dependency is one upstream target's exported view, in the shape the
// Aggregator consumes. Compile and Link are optional: a dependency with no
// foreign surface contributes only its Descriptor.
type Dependency struct {
	Descriptor *descriptor.Descriptor
	Compile    *xlang.CompileContext
	Link       *xlang.LinkContext
}

// Aggregator accumulates one target's analysis inputs. Not safe for
// concurrent mutation; distinct targets use distinct instances.
type Aggregator struct {
	mode        Mode
	kind        RuleKind
	sdk         platform.SDK
	derivedRoot string

	attrs     *compilation.Attributes
	artifacts *compilation.Artifacts
	moduleMap *modulemap.ModuleMap

	includes       []string
	depDescriptors []*descriptor.Descriptor

	publicForeign []xlang.CompileContext
	implForeign   []xlang.CompileContext
	directForeign []xlang.CompileContext
	linkContexts  []xlang.LinkContext

	finalized bool
}

// New returns an Aggregator for one target of the given kind, analyzed in the
// given mode. derivedRoot is the derived-output root used when expanding
// header search paths.
func New(mode Mode, kind RuleKind, sdk platform.SDK, derivedRoot string) *Aggregator {
	return &Aggregator{
		mode:        mode,
		kind:        kind,
		sdk:         sdk,
		derivedRoot: derivedRoot,
	}
}

func (g *Aggregator) checkAccumulating() {
	if g.finalized {
		panic("aggregate: mutation after Finalize")
	}
}

// SetCompilationAttributes supplies the target's declared compilation
// attributes. May be called at most once.
func (g *Aggregator) SetCompilationAttributes(attrs *compilation.Attributes) *Aggregator {
	g.checkAccumulating()
	if g.attrs != nil {
		panic("aggregate: compilation attributes already set")
	}
	g.attrs = attrs
	return g
}

// SetCompilationArtifacts supplies the target's own sources and produced
// archive. May be called at most once.
func (g *Aggregator) SetCompilationArtifacts(arts *compilation.Artifacts) *Aggregator {
	g.checkAccumulating()
	if g.artifacts != nil {
		panic("aggregate: compilation artifacts already set")
	}
	g.artifacts = arts
	return g
}

// SetModuleMap declares that this target has a generated module map. May be
// called at most once.
func (g *Aggregator) SetModuleMap(mm modulemap.ModuleMap) *Aggregator {
	g.checkAccumulating()
	if g.moduleMap != nil {
		panic("aggregate: module map already set")
	}
	g.moduleMap = &mm
	return g
}

// AddIncludes appends include search path fragments passed straight into the
// compilation context. Cumulative.
func (g *Aggregator) AddIncludes(paths []string) *Aggregator {
	g.checkAccumulating()
	g.includes = append(g.includes, paths...)
	return g
}

// AddDependencies accumulates upstream exports in dependency-list order. May
// be called multiple times; order across calls is preserved.
func (g *Aggregator) AddDependencies(deps []Dependency) *Aggregator {
	g.checkAccumulating()
	for _, dep := range deps {
		if dep.Descriptor != nil {
			g.depDescriptors = append(g.depDescriptors, dep.Descriptor)
		}
		if dep.Compile != nil {
			g.publicForeign = append(g.publicForeign, *dep.Compile)
		}
		if dep.Link != nil {
			g.linkContexts = append(g.linkContexts, *dep.Link)
		}
	}
	return g
}

// AddForeignCompileContexts merges foreign compile contexts at the given
// scope. ScopeDirect is only supported in LinkOnly mode: in CompileAndLink
// mode the compile step supplies direct contexts itself later, so accepting
// them here would double-merge them.
func (g *Aggregator) AddForeignCompileContexts(ctxs []xlang.CompileContext, s compilation.Scope) *Aggregator {
	g.checkAccumulating()
	switch s {
	case compilation.ScopeDirect:
		if g.mode != LinkOnly {
			panic("aggregate: direct foreign compile contexts are only supported in link_only mode")
		}
		g.directForeign = append(g.directForeign, ctxs...)
	case compilation.ScopeImplementation:
		g.implForeign = append(g.implForeign, ctxs...)
	default:
		g.publicForeign = append(g.publicForeign, ctxs...)
	}
	return g
}

// AddForeignLinkContexts appends foreign link contexts in supplied order.
func (g *Aggregator) AddForeignLinkContexts(ctxs []xlang.LinkContext) *Aggregator {
	g.checkAccumulating()
	g.linkContexts = append(g.linkContexts, ctxs...)
	return g
}

// Finalize composes the accumulated inputs into the immutable Result. It may
// be called exactly once; the Aggregator is inert afterwards.
func (g *Aggregator) Finalize(ctx context.Context) *Result {
	g.checkAccumulating()
	g.finalized = true
	logger := ctxlog.FromContext(ctx)

	descB := descriptor.NewBuilder()
	for _, d := range g.depDescriptors {
		descB.AddFromDependency(d)
	}

	ctxB := compilation.NewContextBuilder()
	ctxB.AddIncludes(g.includes)
	ctxB.AddFromDescriptors(g.depDescriptors)
	ctxB.AddForeign(g.publicForeign, compilation.ScopePublic)
	ctxB.AddForeign(g.implForeign, compilation.ScopeImplementation)
	ctxB.AddForeign(g.directForeign, compilation.ScopeDirect)

	if g.attrs != nil {
		g.lowerAttributes(descB, ctxB)
	}
	if g.artifacts != nil {
		g.registerArtifacts(descB, ctxB)
	}
	if g.moduleMap != nil {
		if umbrella, ok := g.moduleMap.UmbrellaHeader(); ok {
			descB.Add(descriptor.UmbrellaHeader, umbrella)
		}
		descB.AddDirect(descriptor.ModuleMap, g.moduleMap.Artifact())
	}

	res := &Result{
		mode:         g.mode,
		desc:         descB.Build(),
		compileCtx:   ctxB.Build(),
		linkContexts: g.linkContexts,
		artifacts:    g.artifacts,
	}
	logger.Debug("Target aggregation finalized.",
		"mode", g.mode.String(),
		"kind", g.kind.String(),
		"deps", len(g.depDescriptors),
		"link_contexts", len(g.linkContexts))
	return res
}

// lowerAttributes feeds the declared attributes into both builders: headers
// and defines into the context, search paths (declared and SDK-remapped)
// into the context, and the public surface onto the descriptor for
// propagation to dependents.
func (g *Aggregator) lowerAttributes(descB *descriptor.Builder, ctxB *compilation.ContextBuilder) {
	attrs := g.attrs

	sdkIncludes := make([]string, 0, len(attrs.SDKIncludeDirs))
	for _, rel := range attrs.SDKIncludeDirs {
		sdkIncludes = append(sdkIncludes, g.sdk.UsrInclude(rel))
	}
	searchPaths := attrs.HeaderSearchPaths(g.derivedRoot)

	publicHdrs := artifact.FilterAggregates(attrs.Hdrs)
	textualHdrs := artifact.FilterAggregates(attrs.TextualHdrs)

	ctxB.AddPublicHeaders(publicHdrs)
	ctxB.AddTextualHeaders(textualHdrs)
	ctxB.AddDefines(attrs.Defines)
	ctxB.AddIncludes(searchPaths)
	ctxB.AddIncludes(sdkIncludes)

	descB.ExportHeaders(publicHdrs...)
	descB.ExportDefines(attrs.Defines...)
	descB.ExportIncludes(searchPaths...)
	descB.ExportIncludes(sdkIncludes...)
}

// registerArtifacts registers the target's own sources: compilable sources
// (headers and precompiled objects excluded) plus non-compiled sources enter
// the Source category in both views, header-typed sources become private
// headers, and the produced archive is exposed to the cross-language bridge
// when the rule kind allows it.
func (g *Aggregator) registerArtifacts(descB *descriptor.Builder, ctxB *compilation.ContextBuilder) {
	arts := g.artifacts

	var sources []artifact.Artifact
	for _, s := range arts.Srcs() {
		if artifact.IsCompilable(s) {
			sources = append(sources, s)
		}
	}
	sources = append(sources, arts.NonCompiledSrcs()...)
	sources = artifact.FilterAggregates(sources)
	descB.AddDirect(descriptor.Source, sources...)

	ctxB.AddPublicHeaders(artifact.FilterAggregates(arts.AdditionalHdrs()))
	ctxB.AddPrivateHeaders(artifact.FilterHeaders(arts.Srcs()))

	if archive, ok := arts.Archive(); ok && crossConsumableKinds[g.kind] {
		descB.Add(descriptor.CrossLibrary, archive)
	}
}
