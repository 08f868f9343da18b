/*
Package descriptor implements the immutable per-target export bundle that the
analysis step publishes to dependents.

A Descriptor groups artifact handles into a closed set of categories. Every
category keeps two ordered, duplicate-free views: the transitive view (what
any transitive dependent may see) and the direct view (what only the
declaring target contributed). The direct view is always a subset of the
transitive view.

Beyond the categories, a Descriptor carries the propagation surface dependents
pull into their own compilation contexts: exported include paths, exported
preprocessor defines, and exported public headers, all in first-occurrence
order.

Descriptors are built exactly once through a Builder and never mutated
afterwards; finalized values may be shared freely across concurrent target
analyses.
*/
package descriptor

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// Category classifies the artifacts a target exports.
type Category int

const (
	// Source holds the target's compilable sources.
	Source Category = iota
	// ModuleMap holds generated module-map files.
	ModuleMap
	// UmbrellaHeader holds umbrella headers declared by module maps.
	UmbrellaHeader
	// CrossLibrary holds archives consumable by the cross-language bridge.
	CrossLibrary

	numCategories
)

// Categories lists every category in stable iteration order.
var Categories = []Category{Source, ModuleMap, UmbrellaHeader, CrossLibrary}

func (c Category) String() string {
	switch c {
	case Source:
		return "source"
	case ModuleMap:
		return "module_map"
	case UmbrellaHeader:
		return "umbrella_header"
	case CrossLibrary:
		return "cross_library"
	}
	return "unknown"
}

// Descriptor is the immutable per-target export bundle. The zero value is not
// usable; construct one with a Builder.
type Descriptor struct {
	transitive [numCategories][]artifact.Artifact
	direct     [numCategories][]artifact.Artifact

	includes []string
	defines  []string
	headers  []artifact.Artifact
}

// Transitive returns the full ordered view of a category. Callers must not
// modify the returned slice.
func (d *Descriptor) Transitive(c Category) []artifact.Artifact {
	return d.transitive[c]
}

// Direct returns the declaring-target-only view of a category. Callers must
// not modify the returned slice.
func (d *Descriptor) Direct(c Category) []artifact.Artifact {
	return d.direct[c]
}

// ExportedIncludes returns the include search paths this target propagates to
// dependents' compile actions, in declaration order.
func (d *Descriptor) ExportedIncludes() []string {
	return d.includes
}

// ExportedDefines returns the preprocessor defines this target propagates, in
// declaration order.
func (d *Descriptor) ExportedDefines() []string {
	return d.defines
}

// ExportedHeaders returns the public headers this target propagates, in
// declaration order.
func (d *Descriptor) ExportedHeaders() []artifact.Artifact {
	return d.headers
}
