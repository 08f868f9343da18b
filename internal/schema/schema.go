// Package schema holds the HCL block shapes of target manifest files.
// List-valued attributes stay as expressions here; the hcl loader evaluates
// them against the manifest's EvalContext before translation into the
// format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Target represents a `target "<kind>" "<name>" { … }` block.
type Target struct {
	Kind string `hcl:"kind,label"`
	Name string `hcl:"name,label"`

	Srcs            hcl.Expression `hcl:"srcs,optional"`
	NonCompiledSrcs hcl.Expression `hcl:"non_compiled_srcs,optional"`
	Hdrs            hcl.Expression `hcl:"hdrs,optional"`
	TextualHdrs     hcl.Expression `hcl:"textual_hdrs,optional"`

	Defines     hcl.Expression `hcl:"defines,optional"`
	Includes    hcl.Expression `hcl:"includes,optional"`
	SDKIncludes hcl.Expression `hcl:"sdk_includes,optional"`

	Deps []string `hcl:"deps,optional"`

	ModuleMap      bool `hcl:"module_map,optional"`
	UmbrellaHeader bool `hcl:"umbrella_header,optional"`
}

// File represents the top-level structure of one manifest file.
type File struct {
	Targets []*Target `hcl:"target,block"`
	Body    hcl.Body  `hcl:",remain"`
}
