package analyzer

import (
	"context"
	"fmt"

	"github.com/vk/buildmerge/internal/aggregate"
	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/builder"
	"github.com/vk/buildmerge/internal/compilation"
	"github.com/vk/buildmerge/internal/intermediates"
)

// analyzeTarget runs the aggregation core for one target: dependency exports
// in declaration order, then the target's own attributes, artifacts, and
// module map, then a single finalization.
func (a *Analyzer) analyzeTarget(ctx context.Context, n *builder.Node) (*aggregate.Result, error) {
	t := n.Target

	mode := aggregate.CompileAndLink
	if n.Kind == aggregate.KindBinary {
		mode = aggregate.LinkOnly
	}
	agg := aggregate.New(mode, n.Kind, a.sdk, a.derivedRoot)

	depIDs, err := a.graph.Dependencies(n.ID)
	if err != nil {
		return nil, err
	}
	deps := make([]aggregate.Dependency, 0, len(depIDs))
	for _, id := range depIDs {
		depNode := a.graph.Nodes[id]
		if depNode.Result == nil {
			return nil, fmt.Errorf("dependency %s has no analysis result", id)
		}
		link, ok := a.ExportedLink(id)
		if !ok {
			return nil, fmt.Errorf("dependency %s has no exported link context", id)
		}
		deps = append(deps, aggregate.Dependency{
			Descriptor: depNode.Result.Descriptor(),
			Link:       &link,
		})
	}
	agg.AddDependencies(deps)

	agg.SetCompilationAttributes(&compilation.Attributes{
		PackagePath:    t.Package,
		Hdrs:           entriesToArtifacts(t.Package, t.Hdrs),
		TextualHdrs:    entriesToArtifacts(t.Package, t.TextualHdrs),
		Defines:        t.Defines,
		IncludeDirs:    t.Includes,
		SDKIncludeDirs: t.SDKIncludes,
	})

	inter := intermediates.New(a.derivedRoot, t.Package, t.Name)

	srcs := entriesToArtifacts(t.Package, t.Srcs)
	nonCompiled := entriesToArtifacts(t.Package, t.NonCompiledSrcs)
	if len(srcs)+len(nonCompiled) > 0 {
		var archive *artifact.Artifact
		if hasCompilable(srcs) {
			ar := inter.Archive()
			archive = &ar
		}
		agg.SetCompilationArtifacts(compilation.NewArtifacts(srcs, nonCompiled, nil, archive))
	}

	if t.ModuleMap {
		if t.UmbrellaHeader {
			agg.SetModuleMap(inter.ModuleMapWithUmbrella())
		} else {
			agg.SetModuleMap(inter.ModuleMap())
		}
	}

	return agg.Finalize(ctx), nil
}

func entriesToArtifacts(pkg string, entries []string) []artifact.Artifact {
	if len(entries) == 0 {
		return nil
	}
	out := make([]artifact.Artifact, 0, len(entries))
	for _, e := range entries {
		out = append(out, artifact.FromEntry(pkg, e))
	}
	return out
}

func hasCompilable(srcs []artifact.Artifact) bool {
	for _, s := range srcs {
		if !s.Aggregate && artifact.IsCompilable(s) {
			return true
		}
	}
	return false
}
