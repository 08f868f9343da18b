// Package xlang holds the cross-language (foreign toolchain) descriptors
// exchanged with the action-generation subsystem: a flattened compile view,
// an order-significant link view, and their combination.
package xlang

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// CompileContext is the canonical, flattened compile view of a target as seen
// by a foreign toolchain: ordered include paths, categorized headers, ordered
// defines, and module-map references.
type CompileContext struct {
	Includes       []string
	Headers        []artifact.Artifact
	PrivateHeaders []artifact.Artifact
	TextualHeaders []artifact.Artifact
	Defines        []string
	ModuleMaps     []artifact.Artifact
}

// Info bundles the compile and link views of one target for consumers that
// need both.
type Info struct {
	Compile CompileContext
	Link    LinkContext
}
