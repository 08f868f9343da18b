package descriptor

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// Builder accumulates a Descriptor from a target's own declarations and its
// dependencies' descriptors. Appends collapse duplicates at their first
// occurrence, so accumulation order is also iteration order.
//
// A Builder is single-use: Build finalizes it, and any further call panics.
type Builder struct {
	d *Descriptor

	seenTransitive [numCategories]map[string]bool
	seenDirect     [numCategories]map[string]bool
	seenIncludes   map[string]bool
	seenDefines    map[string]bool
	seenHeaders    map[string]bool

	built bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{
		d:            &Descriptor{},
		seenIncludes: make(map[string]bool),
		seenDefines:  make(map[string]bool),
		seenHeaders:  make(map[string]bool),
	}
	for c := range b.seenTransitive {
		b.seenTransitive[c] = make(map[string]bool)
		b.seenDirect[c] = make(map[string]bool)
	}
	return b
}

func (b *Builder) checkMutable() {
	if b.built {
		panic("descriptor: builder used after Build")
	}
}

// AddFromDependency appends the dependency's transitive views (never its
// direct views) to this builder's transitive views, category by category, and
// merges the dependency's propagation surface. Call it once per dependency in
// dependency-list order.
func (b *Builder) AddFromDependency(dep *Descriptor) *Builder {
	b.checkMutable()
	for _, c := range Categories {
		b.appendTransitive(c, dep.transitive[c])
	}
	b.ExportIncludes(dep.includes...)
	b.ExportDefines(dep.defines...)
	b.ExportHeaders(dep.headers...)
	return b
}

// Add appends artifacts to the transitive view of a category. Pseudo-file
// aggregates are dropped.
func (b *Builder) Add(c Category, arts ...artifact.Artifact) *Builder {
	b.checkMutable()
	b.appendTransitive(c, arts)
	return b
}

// AddDirect appends artifacts to both the transitive and the direct view of a
// category, keeping direct ⊆ transitive. Pseudo-file aggregates are dropped.
func (b *Builder) AddDirect(c Category, arts ...artifact.Artifact) *Builder {
	b.checkMutable()
	b.appendTransitive(c, arts)
	for _, a := range arts {
		if a.Aggregate || b.seenDirect[c][a.Path] {
			continue
		}
		b.seenDirect[c][a.Path] = true
		b.d.direct[c] = append(b.d.direct[c], a)
	}
	return b
}

// ExportIncludes appends include search paths to the propagation surface.
func (b *Builder) ExportIncludes(paths ...string) *Builder {
	b.checkMutable()
	for _, p := range paths {
		if b.seenIncludes[p] {
			continue
		}
		b.seenIncludes[p] = true
		b.d.includes = append(b.d.includes, p)
	}
	return b
}

// ExportDefines appends preprocessor defines to the propagation surface.
func (b *Builder) ExportDefines(defines ...string) *Builder {
	b.checkMutable()
	for _, def := range defines {
		if b.seenDefines[def] {
			continue
		}
		b.seenDefines[def] = true
		b.d.defines = append(b.d.defines, def)
	}
	return b
}

// ExportHeaders appends public headers to the propagation surface.
// Pseudo-file aggregates are dropped.
func (b *Builder) ExportHeaders(hdrs ...artifact.Artifact) *Builder {
	b.checkMutable()
	for _, h := range hdrs {
		if h.Aggregate || b.seenHeaders[h.Path] {
			continue
		}
		b.seenHeaders[h.Path] = true
		b.d.headers = append(b.d.headers, h)
	}
	return b
}

// Build finalizes and returns the immutable Descriptor. The builder must not
// be used afterwards.
func (b *Builder) Build() *Descriptor {
	b.checkMutable()
	b.built = true
	d := b.d
	b.d = nil
	return d
}

func (b *Builder) appendTransitive(c Category, arts []artifact.Artifact) {
	for _, a := range arts {
		if a.Aggregate || b.seenTransitive[c][a.Path] {
			continue
		}
		b.seenTransitive[c][a.Path] = true
		b.d.transitive[c] = append(b.d.transitive[c], a)
	}
}
