// Package intermediates derives the per-target output handles the analysis
// step registers before any action runs: the archive a compile step will
// produce and the generated module-map files. All paths live under the
// derived-output root; nothing here touches the filesystem.
package intermediates

import (
	"path"

	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/modulemap"
)

// Paths derives artifact handles for one target's intermediate outputs.
type Paths struct {
	root string
	pkg  string
	name string
}

// New returns a Paths rooted at the derived-output root for the target
// declared as name inside pkg.
func New(root, pkg, name string) *Paths {
	return &Paths{root: root, pkg: pkg, name: name}
}

// Archive returns the handle of the static archive the compile step produces.
func (p *Paths) Archive() artifact.Artifact {
	return artifact.New(path.Join(p.root, p.pkg, "lib"+p.name+".a"))
}

// ModuleMap returns the handle of the target's generated module map.
func (p *Paths) ModuleMap() modulemap.ModuleMap {
	return modulemap.New(p.moduleMapArtifact())
}

// ModuleMapWithUmbrella returns the module map together with its generated
// umbrella header.
func (p *Paths) ModuleMapWithUmbrella() modulemap.ModuleMap {
	umbrella := artifact.New(path.Join(p.root, p.pkg, p.name+".umbrella.h"))
	return modulemap.NewWithUmbrella(p.moduleMapArtifact(), umbrella)
}

func (p *Paths) moduleMapArtifact() artifact.Artifact {
	return artifact.New(path.Join(p.root, p.pkg, p.name+".modulemap"))
}
