// Package config defines the format-agnostic model of a target manifest tree
// and the Loader interface format-specific loaders implement.
package config

// Model is the unified representation of every target declared in the loaded
// manifest tree, in file-then-declaration order.
type Model struct {
	Targets []*Target
}

// Target is the format-agnostic representation of a `target` block.
type Target struct {
	// Kind is the validated rule kind label, e.g. "library".
	Kind string
	// Name is the workspace-unique target name.
	Name string
	// Package is the workspace-relative directory of the declaring manifest.
	Package string

	Srcs            []string
	NonCompiledSrcs []string
	Hdrs            []string
	TextualHdrs     []string

	Defines     []string
	Includes    []string
	SDKIncludes []string

	// Deps lists dependency target names in declaration order. Order is
	// preserved all the way into link-input merging.
	Deps []string

	// ModuleMap declares that a module map is generated for this target;
	// UmbrellaHeader additionally declares a generated umbrella header.
	ModuleMap      bool
	UmbrellaHeader bool
}

// ID returns the canonical node identifier for the target.
func (t *Target) ID() string {
	return t.Kind + "." + t.Name
}
