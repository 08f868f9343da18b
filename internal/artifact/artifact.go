// Package artifact defines the immutable file handles the analysis core
// regroups. An Artifact is owned by the surrounding build graph; this package
// only classifies and filters, it never touches the filesystem.
package artifact

import (
	"path"
	"strings"
)

// Artifact is an immutable, path-identified handle to a build input or
// output. Two artifacts are the same input iff their paths are equal.
type Artifact struct {
	// Path is the workspace-relative path of the file.
	Path string

	// Aggregate marks a symlink-tree placeholder that only expands into real
	// files at execution time. Aggregates cannot be fed to a compiler as a
	// direct input and are silently dropped from every output category.
	Aggregate bool
}

// New returns a plain file artifact for the given path.
func New(p string) Artifact {
	return Artifact{Path: p}
}

// NewAggregate returns a pseudo-file aggregate artifact for the given path.
func NewAggregate(p string) Artifact {
	return Artifact{Path: p, Aggregate: true}
}

// FromEntry builds an artifact from a manifest entry declared inside pkg.
// An entry with a trailing slash denotes a symlink-tree aggregate.
func FromEntry(pkg, entry string) Artifact {
	if strings.HasSuffix(entry, "/") {
		return NewAggregate(path.Join(pkg, strings.TrimSuffix(entry, "/")))
	}
	return New(path.Join(pkg, entry))
}

// Basename returns the last path element of the artifact.
func (a Artifact) Basename() string {
	return path.Base(a.Path)
}

// Ext returns the file extension of the artifact, including the dot.
func (a Artifact) Ext() string {
	return path.Ext(a.Path)
}

var headerExts = map[string]bool{
	".h":   true,
	".hh":  true,
	".hpp": true,
	".inc": true,
}

var objectExts = map[string]bool{
	".o":   true,
	".obj": true,
}

// IsHeader reports whether the artifact is a header-typed file.
func IsHeader(a Artifact) bool {
	return headerExts[a.Ext()]
}

// IsObject reports whether the artifact is a precompiled object file.
func IsObject(a Artifact) bool {
	return objectExts[a.Ext()]
}

// IsCompilable reports whether the artifact is a source the compiler consumes
// directly: neither a header nor a precompiled object.
func IsCompilable(a Artifact) bool {
	return !IsHeader(a) && !IsObject(a)
}

// FilterAggregates returns the input artifacts with pseudo-file aggregates
// removed, preserving order. The returned slice is always freshly allocated.
func FilterAggregates(in []Artifact) []Artifact {
	out := make([]Artifact, 0, len(in))
	for _, a := range in {
		if !a.Aggregate {
			out = append(out, a)
		}
	}
	return out
}

// FilterHeaders returns only the header-typed artifacts from in, in order.
func FilterHeaders(in []Artifact) []Artifact {
	var out []Artifact
	for _, a := range in {
		if IsHeader(a) {
			out = append(out, a)
		}
	}
	return out
}
