/*
Package compilation implements the per-target compilation context: the merged
include search paths, header sets, preprocessor defines, and foreign
(cross-language) sub-contexts a compile action needs.

Ordering is load-bearing everywhere in this package. Include search is
first-match-wins and preprocessor behavior depends on define order, so every
sequence preserves accumulation order and collapses duplicates at their first
occurrence.
*/
package compilation

import (
	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/xlang"
)

// Scope is the visibility at which a foreign sub-context is merged.
type Scope int

const (
	// ScopePublic contexts propagate transitively to all dependents.
	ScopePublic Scope = iota
	// ScopeImplementation contexts affect only this target's own compile
	// action and are never re-exported.
	ScopeImplementation
	// ScopeDirect contexts are visible to this target and its immediate
	// dependents, but propagate no further.
	ScopeDirect
)

func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeImplementation:
		return "implementation"
	case ScopeDirect:
		return "direct"
	}
	return "unknown"
}

// Context is the immutable compilation view of one target. The zero value is
// not usable; construct one with a ContextBuilder.
type Context struct {
	includes []string
	defines  []string

	publicHdrs  []artifact.Artifact
	privateHdrs []artifact.Artifact
	textualHdrs []artifact.Artifact

	public         []xlang.CompileContext
	implementation []xlang.CompileContext
	direct         []xlang.CompileContext
}

// Includes returns the ordered include search path fragments.
func (c *Context) Includes() []string { return c.includes }

// Defines returns the ordered preprocessor defines.
func (c *Context) Defines() []string { return c.defines }

// PublicHeaders returns headers visible to dependents' compile actions.
func (c *Context) PublicHeaders() []artifact.Artifact { return c.publicHdrs }

// PrivateHeaders returns headers visible only to this target's own compile
// action.
func (c *Context) PrivateHeaders() []artifact.Artifact { return c.privateHdrs }

// TextualHeaders returns headers that are included but never compiled.
func (c *Context) TextualHeaders() []artifact.Artifact { return c.textualHdrs }

// Foreign returns the foreign sub-contexts merged at the given scope.
func (c *Context) Foreign(s Scope) []xlang.CompileContext {
	switch s {
	case ScopePublic:
		return c.public
	case ScopeImplementation:
		return c.implementation
	default:
		return c.direct
	}
}

// CrossCompileContext lowers the context into the canonical flattened shape
// the action-generation subsystem consumes: a single ordered include list,
// merged header sets, merged defines, and collected module maps. Foreign
// contexts contribute in scope order public, implementation, direct, each
// preserving its own internal order.
func (c *Context) CrossCompileContext() xlang.CompileContext {
	out := xlang.CompileContext{
		Includes:       dedupStrings(c.includes),
		Headers:        dedupArtifacts(c.publicHdrs),
		PrivateHeaders: dedupArtifacts(c.privateHdrs),
		TextualHeaders: dedupArtifacts(c.textualHdrs),
		Defines:        dedupStrings(c.defines),
	}
	seenInc := sliceSet(out.Includes)
	seenDef := sliceSet(out.Defines)
	seenHdr := artifactSet(out.Headers)
	seenMap := make(map[string]bool)

	for _, group := range [][]xlang.CompileContext{c.public, c.implementation, c.direct} {
		for _, fc := range group {
			for _, inc := range fc.Includes {
				if !seenInc[inc] {
					seenInc[inc] = true
					out.Includes = append(out.Includes, inc)
				}
			}
			for _, def := range fc.Defines {
				if !seenDef[def] {
					seenDef[def] = true
					out.Defines = append(out.Defines, def)
				}
			}
			for _, h := range fc.Headers {
				if !seenHdr[h.Path] {
					seenHdr[h.Path] = true
					out.Headers = append(out.Headers, h)
				}
			}
			for _, m := range fc.ModuleMaps {
				if !seenMap[m.Path] {
					seenMap[m.Path] = true
					out.ModuleMaps = append(out.ModuleMaps, m)
				}
			}
		}
	}
	return out
}

func dedupStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func dedupArtifacts(in []artifact.Artifact) []artifact.Artifact {
	out := make([]artifact.Artifact, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		if !seen[a.Path] {
			seen[a.Path] = true
			out = append(out, a)
		}
	}
	return out
}

func sliceSet(in []string) map[string]bool {
	m := make(map[string]bool, len(in))
	for _, s := range in {
		m[s] = true
	}
	return m
}

func artifactSet(in []artifact.Artifact) map[string]bool {
	m := make(map[string]bool, len(in))
	for _, a := range in {
		m[a.Path] = true
	}
	return m
}
