package compilation

import (
	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/descriptor"
	"github.com/vk/buildmerge/internal/xlang"
)

// ContextBuilder accumulates a Context. All appends preserve order and
// collapse duplicates at first occurrence. Pseudo-file aggregates never enter
// a header set.
//
// A ContextBuilder is single-use: Build finalizes it, further calls panic.
type ContextBuilder struct {
	c *Context

	seenIncludes map[string]bool
	seenDefines  map[string]bool
	seenPublic   map[string]bool
	seenPrivate  map[string]bool
	seenTextual  map[string]bool

	built bool
}

// NewContextBuilder returns an empty ContextBuilder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{
		c:            &Context{},
		seenIncludes: make(map[string]bool),
		seenDefines:  make(map[string]bool),
		seenPublic:   make(map[string]bool),
		seenPrivate:  make(map[string]bool),
		seenTextual:  make(map[string]bool),
	}
}

func (b *ContextBuilder) checkMutable() {
	if b.built {
		panic("compilation: context builder used after Build")
	}
}

// AddIncludes appends include search path fragments.
func (b *ContextBuilder) AddIncludes(paths []string) *ContextBuilder {
	b.checkMutable()
	for _, p := range paths {
		if b.seenIncludes[p] {
			continue
		}
		b.seenIncludes[p] = true
		b.c.includes = append(b.c.includes, p)
	}
	return b
}

// AddDefines appends preprocessor defines.
func (b *ContextBuilder) AddDefines(defines []string) *ContextBuilder {
	b.checkMutable()
	for _, def := range defines {
		if b.seenDefines[def] {
			continue
		}
		b.seenDefines[def] = true
		b.c.defines = append(b.c.defines, def)
	}
	return b
}

// AddPublicHeaders appends headers re-exported to dependents.
func (b *ContextBuilder) AddPublicHeaders(hdrs []artifact.Artifact) *ContextBuilder {
	b.checkMutable()
	b.c.publicHdrs = appendHeaders(b.c.publicHdrs, b.seenPublic, hdrs)
	return b
}

// AddPrivateHeaders appends headers visible only to the declaring target.
func (b *ContextBuilder) AddPrivateHeaders(hdrs []artifact.Artifact) *ContextBuilder {
	b.checkMutable()
	b.c.privateHdrs = appendHeaders(b.c.privateHdrs, b.seenPrivate, hdrs)
	return b
}

// AddTextualHeaders appends included-but-not-compiled headers.
func (b *ContextBuilder) AddTextualHeaders(hdrs []artifact.Artifact) *ContextBuilder {
	b.checkMutable()
	b.c.textualHdrs = appendHeaders(b.c.textualHdrs, b.seenTextual, hdrs)
	return b
}

// AddFromDescriptors pulls the propagation surface of each dependency
// descriptor into this context, in supplied order: exported includes into the
// include list, exported headers into the public header set, exported defines
// into the define list.
func (b *ContextBuilder) AddFromDescriptors(descs []*descriptor.Descriptor) *ContextBuilder {
	b.checkMutable()
	for _, d := range descs {
		b.AddIncludes(d.ExportedIncludes())
		b.AddPublicHeaders(d.ExportedHeaders())
		b.AddDefines(d.ExportedDefines())
	}
	return b
}

// AddForeign merges foreign compile sub-contexts at the given scope,
// preserving supplied order within the scope.
func (b *ContextBuilder) AddForeign(ctxs []xlang.CompileContext, s Scope) *ContextBuilder {
	b.checkMutable()
	switch s {
	case ScopePublic:
		b.c.public = append(b.c.public, ctxs...)
	case ScopeImplementation:
		b.c.implementation = append(b.c.implementation, ctxs...)
	case ScopeDirect:
		b.c.direct = append(b.c.direct, ctxs...)
	}
	return b
}

// Build finalizes and returns the immutable Context. The builder must not be
// used afterwards.
func (b *ContextBuilder) Build() *Context {
	b.checkMutable()
	b.built = true
	c := b.c
	b.c = nil
	return c
}

func appendHeaders(dst []artifact.Artifact, seen map[string]bool, hdrs []artifact.Artifact) []artifact.Artifact {
	for _, h := range hdrs {
		if h.Aggregate || seen[h.Path] {
			continue
		}
		seen[h.Path] = true
		dst = append(dst, h)
	}
	return dst
}
