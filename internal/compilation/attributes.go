package compilation

import (
	"path"

	"github.com/vk/buildmerge/internal/artifact"
)

// Attributes are a target's own declared compilation inputs, as parsed from
// its manifest. Paths in IncludeDirs are raw fragments relative to the
// declaring package; SDKIncludeDirs are relative to the platform SDK's system
// include root and remapped by the aggregation facade.
type Attributes struct {
	// PackagePath is the workspace-relative directory of the declaring
	// manifest. Include fragments are expanded against it.
	PackagePath string

	Hdrs        []artifact.Artifact
	TextualHdrs []artifact.Artifact

	Defines        []string
	IncludeDirs    []string
	SDKIncludeDirs []string
}

// HeaderSearchPaths expands the raw include fragments into concrete search
// paths: each fragment relative to the declaring package, plus its mirror
// under the derived-output root (generated headers live there). Order follows
// declaration order, source path before derived path.
func (a *Attributes) HeaderSearchPaths(derivedRoot string) []string {
	out := make([]string, 0, 2*len(a.IncludeDirs))
	for _, dir := range a.IncludeDirs {
		p := path.Join(a.PackagePath, dir)
		out = append(out, p)
		if derivedRoot != "" {
			out = append(out, path.Join(derivedRoot, p))
		}
	}
	return out
}
