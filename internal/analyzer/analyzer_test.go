package analyzer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildmerge/internal/aggregate"
	"github.com/vk/buildmerge/internal/builder"
	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/descriptor"
	"github.com/vk/buildmerge/internal/platform"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func buildGraph(t *testing.T, targets ...*config.Target) *builder.Graph {
	t.Helper()
	g, err := builder.Build(testCtx(), &config.Model{Targets: targets})
	require.NoError(t, err)
	return g
}

func runAnalyzer(t *testing.T, g *builder.Graph, workers int) *Analyzer {
	t.Helper()
	a := New(g, workers, platform.SDK{Root: "/sdk"}, "out")
	require.NoError(t, a.Run(testCtx()))
	return a
}

func TestAnalyzeSingleLibrary(t *testing.T) {
	g := buildGraph(t, &config.Target{
		Kind:    "library",
		Name:    "net",
		Package: "lib/net",
		Srcs:    []string{"conn.m", "conn_private.h"},
		Hdrs:    []string{"net.h"},
		Defines: []string{"NET_DEBUG"},
	})
	runAnalyzer(t, g, 1)

	n := g.Nodes["library.net"]
	require.NotNil(t, n.Result)
	res := n.Result

	assert.Equal(t, aggregate.CompileAndLink, res.Mode())
	srcs := res.Descriptor().Transitive(descriptor.Source)
	require.Len(t, srcs, 1)
	assert.Equal(t, "lib/net/conn.m", srcs[0].Path)

	archive, ok := res.CompiledArchive()
	require.True(t, ok)
	assert.Equal(t, "out/lib/net/libnet.a", archive.Path)

	cc := res.CompilationContext()
	assert.Equal(t, []string{"NET_DEBUG"}, cc.Defines())
	require.Len(t, cc.PrivateHeaders(), 1)
	assert.Equal(t, "lib/net/conn_private.h", cc.PrivateHeaders()[0].Path)
}

func TestBinaryAnalyzedLinkOnly(t *testing.T) {
	g := buildGraph(t, &config.Target{Kind: "binary", Name: "tool", Package: "cmd/tool"})
	runAnalyzer(t, g, 1)

	res := g.Nodes["binary.tool"].Result
	require.NotNil(t, res)
	assert.Equal(t, aggregate.LinkOnly, res.Mode())

	_, ok := res.CompiledArchive()
	assert.False(t, ok, "a binary without sources produces no archive")
}

func TestPropagationAcrossChain(t *testing.T) {
	g := buildGraph(t,
		&config.Target{Kind: "library", Name: "base", Package: "lib/base", Srcs: []string{"base.m"}, Hdrs: []string{"base.h"}, Defines: []string{"BASE"}},
		&config.Target{Kind: "library", Name: "net", Package: "lib/net", Srcs: []string{"net.m"}, Hdrs: []string{"net.h"}, Defines: []string{"NET"}, Deps: []string{"base"}},
		&config.Target{Kind: "binary", Name: "tool", Package: "cmd/tool", Srcs: []string{"main.m"}, Deps: []string{"net"}},
	)
	a := runAnalyzer(t, g, 4)

	// Dependency exports reach the dependent's compilation context in order.
	netCC := g.Nodes["library.net"].Result.CompilationContext()
	assert.Equal(t, []string{"BASE", "NET"}, netCC.Defines())

	// Transitive sources accumulate through descriptors.
	toolSrcs := g.Nodes["binary.tool"].Result.Descriptor().Transitive(descriptor.Source)
	paths := make([]string, 0, len(toolSrcs))
	for _, s := range toolSrcs {
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{"lib/base/base.m", "lib/net/net.m", "cmd/tool/main.m"}, paths)

	// The exported link context keeps dependents before dependencies.
	link, ok := a.ExportedLink("binary.tool")
	require.True(t, ok)
	libs := make([]string, 0, len(link.Inputs))
	for _, in := range link.Inputs {
		libs = append(libs, in.Library.Path)
	}
	assert.Equal(t, []string{
		"out/cmd/tool/libtool.a",
		"out/lib/net/libnet.a",
		"out/lib/base/libbase.a",
	}, libs)
}

func TestDiamondDependencyDeduplicatesDescriptors(t *testing.T) {
	g := buildGraph(t,
		&config.Target{Kind: "library", Name: "base", Package: "base", Srcs: []string{"base.m"}},
		&config.Target{Kind: "library", Name: "left", Package: "left", Srcs: []string{"left.m"}, Deps: []string{"base"}},
		&config.Target{Kind: "library", Name: "right", Package: "right", Srcs: []string{"right.m"}, Deps: []string{"base"}},
		&config.Target{Kind: "binary", Name: "top", Package: "top", Deps: []string{"left", "right"}},
	)
	a := runAnalyzer(t, g, 4)

	// base.m reaches top once through each branch but appears once.
	srcs := g.Nodes["binary.top"].Result.Descriptor().Transitive(descriptor.Source)
	count := 0
	for _, s := range srcs {
		if s.Path == "base/base.m" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Link inputs are not deduplicated: base's archive arrives once per
	// branch, by design.
	link, ok := a.ExportedLink("binary.top")
	require.True(t, ok)
	baseCount := 0
	for _, in := range link.Inputs {
		if in.Library.Path == "out/base/libbase.a" {
			baseCount++
		}
	}
	assert.Equal(t, 2, baseCount)
}

func TestModuleMapFlowsToDescriptor(t *testing.T) {
	g := buildGraph(t, &config.Target{
		Kind:           "library",
		Name:           "net",
		Package:        "lib/net",
		Srcs:           []string{"net.m"},
		ModuleMap:      true,
		UmbrellaHeader: true,
	})
	runAnalyzer(t, g, 1)

	d := g.Nodes["library.net"].Result.Descriptor()
	require.Len(t, d.Transitive(descriptor.ModuleMap), 1)
	assert.Equal(t, "out/lib/net/net.modulemap", d.Transitive(descriptor.ModuleMap)[0].Path)
	require.Len(t, d.Transitive(descriptor.UmbrellaHeader), 1)
	assert.Equal(t, "out/lib/net/net.umbrella.h", d.Transitive(descriptor.UmbrellaHeader)[0].Path)
}

func TestAggregateEntriesAreFiltered(t *testing.T) {
	g := buildGraph(t, &config.Target{
		Kind:    "library",
		Name:    "gen",
		Package: "gen",
		Srcs:    []string{"real.m", "tree/"},
		Hdrs:    []string{"hdrs/"},
	})
	runAnalyzer(t, g, 1)

	res := g.Nodes["library.gen"].Result
	srcs := res.Descriptor().Transitive(descriptor.Source)
	require.Len(t, srcs, 1)
	assert.Equal(t, "gen/real.m", srcs[0].Path)
	assert.Empty(t, res.CompilationContext().PublicHeaders())
}

func TestSDKIncludeRemapping(t *testing.T) {
	g := buildGraph(t, &config.Target{
		Kind:        "library",
		Name:        "net",
		Package:     "lib/net",
		SDKIncludes: []string{"dispatch"},
	})
	runAnalyzer(t, g, 1)

	cc := g.Nodes["library.net"].Result.CompilationContext()
	assert.Contains(t, cc.Includes(), "/sdk/usr/include/dispatch")
}
