package aggregate

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/compilation"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/descriptor"
	"github.com/vk/buildmerge/internal/intermediates"
	"github.com/vk/buildmerge/internal/platform"
	"github.com/vk/buildmerge/internal/xlang"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func newAggregator(mode Mode, kind RuleKind) *Aggregator {
	return New(mode, kind, platform.SDK{Root: "/sdk"}, "out")
}

func depWithExports(t *testing.T, define, header string) Dependency {
	t.Helper()
	b := descriptor.NewBuilder()
	b.ExportDefines(define)
	b.ExportHeaders(artifact.New(header))
	return Dependency{Descriptor: b.Build()}
}

func TestSingleShotSetters(t *testing.T) {
	t.Run("compilation attributes", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		g.SetCompilationAttributes(&compilation.Attributes{})
		assert.Panics(t, func() { g.SetCompilationAttributes(&compilation.Attributes{}) })
	})

	t.Run("compilation artifacts", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		g.SetCompilationArtifacts(compilation.NewArtifacts(nil, nil, nil, nil))
		assert.Panics(t, func() { g.SetCompilationArtifacts(compilation.NewArtifacts(nil, nil, nil, nil)) })
	})

	t.Run("module map", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		mm := intermediates.New("out", "lib", "lib").ModuleMap()
		g.SetModuleMap(mm)
		assert.Panics(t, func() { g.SetModuleMap(mm) })
	})
}

func TestFinalizeIsSingleShot(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	require.NotNil(t, g.Finalize(testCtx()))

	assert.Panics(t, func() { g.Finalize(testCtx()) })
	assert.Panics(t, func() { g.AddIncludes([]string{"late"}) })
	assert.Panics(t, func() { g.AddDependencies(nil) })
}

func TestDirectForeignContextsRequireLinkOnlyMode(t *testing.T) {
	ctxs := []xlang.CompileContext{{Defines: []string{"D"}}}

	t.Run("rejected in compile_and_link", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		assert.Panics(t, func() { g.AddForeignCompileContexts(ctxs, compilation.ScopeDirect) })
	})

	t.Run("accepted in link_only", func(t *testing.T) {
		g := newAggregator(LinkOnly, KindBinary)
		assert.NotPanics(t, func() { g.AddForeignCompileContexts(ctxs, compilation.ScopeDirect) })
		res := g.Finalize(testCtx())
		assert.Len(t, res.CompilationContext().Foreign(compilation.ScopeDirect), 1)
	})

	t.Run("other scopes unrestricted", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		assert.NotPanics(t, func() {
			g.AddForeignCompileContexts(ctxs, compilation.ScopePublic)
			g.AddForeignCompileContexts(ctxs, compilation.ScopeImplementation)
		})
	})
}

// Target A depends on B (define D1, header h1) and C (define D2, header h2),
// added in order [B, C]: A's context must see [D1 D2] and [h1 h2].
func TestDependencyPropagationOrder(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	g.AddDependencies([]Dependency{
		depWithExports(t, "D1", "b/h1.h"),
		depWithExports(t, "D2", "c/h2.h"),
	})
	res := g.Finalize(testCtx())

	cc := res.CompilationContext()
	assert.Equal(t, []string{"D1", "D2"}, cc.Defines())
	assert.Equal(t, []artifact.Artifact{
		artifact.New("b/h1.h"),
		artifact.New("c/h2.h"),
	}, cc.PublicHeaders())
}

func TestDependencyDescriptorsMergeTransitively(t *testing.T) {
	depB := descriptor.NewBuilder()
	depB.AddDirect(descriptor.Source, artifact.New("b/impl.m"))
	b := depB.Build()

	g := newAggregator(CompileAndLink, KindLibrary)
	g.AddDependencies([]Dependency{{Descriptor: b}})
	res := g.Finalize(testCtx())

	d := res.Descriptor()
	assert.Equal(t, []artifact.Artifact{artifact.New("b/impl.m")}, d.Transitive(descriptor.Source))
	assert.Empty(t, d.Direct(descriptor.Source), "dependency sources must not be direct for the consumer")
}

func TestAttributeLowering(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	g.SetCompilationAttributes(&compilation.Attributes{
		PackagePath:    "lib/net",
		Hdrs:           []artifact.Artifact{artifact.New("lib/net/net.h"), artifact.NewAggregate("lib/net/gen")},
		TextualHdrs:    []artifact.Artifact{artifact.New("lib/net/tables.inc")},
		Defines:        []string{"NET_DEBUG"},
		IncludeDirs:    []string{"include"},
		SDKIncludeDirs: []string{"dispatch"},
	})
	res := g.Finalize(testCtx())

	cc := res.CompilationContext()
	assert.Equal(t, []artifact.Artifact{artifact.New("lib/net/net.h")}, cc.PublicHeaders())
	assert.Equal(t, []artifact.Artifact{artifact.New("lib/net/tables.inc")}, cc.TextualHeaders())
	assert.Equal(t, []string{"NET_DEBUG"}, cc.Defines())
	assert.Equal(t, []string{
		"lib/net/include",
		"out/lib/net/include",
		"/sdk/usr/include/dispatch",
	}, cc.Includes())

	// The public surface is re-exported to dependents through the descriptor.
	d := res.Descriptor()
	assert.Equal(t, []artifact.Artifact{artifact.New("lib/net/net.h")}, d.ExportedHeaders())
	assert.Equal(t, []string{"NET_DEBUG"}, d.ExportedDefines())
	assert.Contains(t, d.ExportedIncludes(), "/sdk/usr/include/dispatch")
}

// Sources [s1.m s2.h] and no archive: Source holds only s1.m, s2.h becomes a
// private header, and the compiled archive is absent.
func TestSourceRegistrationSplitsHeaders(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	g.SetCompilationArtifacts(compilation.NewArtifacts(
		[]artifact.Artifact{artifact.New("s1.m"), artifact.New("s2.h")},
		nil, nil, nil,
	))
	res := g.Finalize(testCtx())

	d := res.Descriptor()
	assert.Equal(t, []artifact.Artifact{artifact.New("s1.m")}, d.Transitive(descriptor.Source))
	assert.Equal(t, []artifact.Artifact{artifact.New("s1.m")}, d.Direct(descriptor.Source))
	assert.Equal(t, []artifact.Artifact{artifact.New("s2.h")}, res.CompilationContext().PrivateHeaders())

	_, ok := res.CompiledArchive()
	assert.False(t, ok)
}

func TestObjectSourcesExcludedNonCompiledIncluded(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	g.SetCompilationArtifacts(compilation.NewArtifacts(
		[]artifact.Artifact{artifact.New("s1.m"), artifact.New("pre.o")},
		[]artifact.Artifact{artifact.New("raw.m")},
		nil, nil,
	))
	res := g.Finalize(testCtx())

	assert.Equal(t, []artifact.Artifact{
		artifact.New("s1.m"),
		artifact.New("raw.m"),
	}, res.Descriptor().Transitive(descriptor.Source))
}

func TestAggregateSourcesNeverSurface(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	g.SetCompilationAttributes(&compilation.Attributes{
		Hdrs: []artifact.Artifact{artifact.NewAggregate("gen/hdrs")},
	})
	g.SetCompilationArtifacts(compilation.NewArtifacts(
		[]artifact.Artifact{artifact.NewAggregate("gen/srcs"), artifact.New("real.m")},
		nil,
		[]artifact.Artifact{artifact.NewAggregate("gen/extra")},
		nil,
	))
	res := g.Finalize(testCtx())

	assert.Equal(t, []artifact.Artifact{artifact.New("real.m")}, res.Descriptor().Transitive(descriptor.Source))
	assert.Empty(t, res.CompilationContext().PublicHeaders())
}

func TestCrossLibraryRegistration(t *testing.T) {
	archive := artifact.New("out/libnet.a")

	cases := []struct {
		name     string
		kind     RuleKind
		archive  *artifact.Artifact
		expected bool
	}{
		{"library with archive", KindLibrary, &archive, true},
		{"import with archive", KindImport, &archive, true},
		{"proto_library with archive", KindProtoLibrary, &archive, true},
		{"binary with archive", KindBinary, &archive, false},
		{"library without archive", KindLibrary, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newAggregator(CompileAndLink, tc.kind)
			g.SetCompilationArtifacts(compilation.NewArtifacts(
				[]artifact.Artifact{artifact.New("s.m")}, nil, nil, tc.archive,
			))
			res := g.Finalize(testCtx())

			libs := res.Descriptor().Transitive(descriptor.CrossLibrary)
			if tc.expected {
				assert.Equal(t, []artifact.Artifact{archive}, libs)
			} else {
				assert.Empty(t, libs)
			}
		})
	}
}

func TestCrossLibraryAbsentWithoutArtifacts(t *testing.T) {
	g := newAggregator(CompileAndLink, KindLibrary)
	res := g.Finalize(testCtx())
	assert.Empty(t, res.Descriptor().Transitive(descriptor.CrossLibrary))
}

func TestModuleMapRegistration(t *testing.T) {
	t.Run("without umbrella", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		g.SetModuleMap(intermediates.New("out", "lib/net", "net").ModuleMap())
		res := g.Finalize(testCtx())

		d := res.Descriptor()
		assert.Equal(t, []artifact.Artifact{artifact.New("out/lib/net/net.modulemap")}, d.Transitive(descriptor.ModuleMap))
		assert.Equal(t, []artifact.Artifact{artifact.New("out/lib/net/net.modulemap")}, d.Direct(descriptor.ModuleMap))
		assert.Empty(t, d.Transitive(descriptor.UmbrellaHeader))
	})

	t.Run("with umbrella", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		g.SetModuleMap(intermediates.New("out", "lib/net", "net").ModuleMapWithUmbrella())
		res := g.Finalize(testCtx())

		d := res.Descriptor()
		assert.Equal(t, []artifact.Artifact{artifact.New("out/lib/net/net.umbrella.h")}, d.Transitive(descriptor.UmbrellaHeader))
	})

	t.Run("no module map declared", func(t *testing.T) {
		g := newAggregator(CompileAndLink, KindLibrary)
		res := g.Finalize(testCtx())
		assert.Empty(t, res.Descriptor().Transitive(descriptor.ModuleMap))
	})
}

func TestLinkContextAccumulationAndLazyMerge(t *testing.T) {
	l1 := xlang.LinkContext{Inputs: []xlang.LinkInput{{Library: artifact.New("out/liba.a")}}}
	l2 := xlang.LinkContext{Inputs: []xlang.LinkInput{{Library: artifact.New("out/libb.a")}}}

	g := newAggregator(LinkOnly, KindBinary)
	g.AddDependencies([]Dependency{{Link: &l1}})
	g.AddForeignLinkContexts([]xlang.LinkContext{l2})
	res := g.Finalize(testCtx())

	require.Len(t, res.LinkContexts(), 2)

	merged := res.CrossLinkContext()
	assert.Equal(t, []xlang.LinkInput{
		{Library: artifact.New("out/liba.a")},
		{Library: artifact.New("out/libb.a")},
	}, merged.Inputs)

	// Merge happens once; repeated calls return the same view.
	assert.Equal(t, merged, res.CrossLinkContext())

	info := res.CrossInfo()
	assert.Equal(t, merged, info.Link)
}

func TestCompiledArchivePresent(t *testing.T) {
	archive := artifact.New("out/libnet.a")
	g := newAggregator(CompileAndLink, KindLibrary)
	g.SetCompilationArtifacts(compilation.NewArtifacts(
		[]artifact.Artifact{artifact.New("s.m")}, nil, nil, &archive,
	))
	res := g.Finalize(testCtx())

	got, ok := res.CompiledArchive()
	require.True(t, ok)
	assert.Equal(t, archive, got)
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"library", "binary", "import", "proto_library"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}

	_, err := ParseKind("framework")
	assert.ErrorContains(t, err, "unknown rule kind")
}
