// Package modulemap models the generated module-map file of a target and its
// optional umbrella header. Generation of the file itself happens elsewhere;
// this is only the handle the analysis step registers and re-exports.
package modulemap

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// ModuleMap is the generated module-map artifact of one target.
type ModuleMap struct {
	art      artifact.Artifact
	umbrella *artifact.Artifact
}

// New returns a module map without an umbrella header.
func New(art artifact.Artifact) ModuleMap {
	return ModuleMap{art: art}
}

// NewWithUmbrella returns a module map that additionally declares an umbrella
// header.
func NewWithUmbrella(art, umbrella artifact.Artifact) ModuleMap {
	return ModuleMap{art: art, umbrella: &umbrella}
}

// Artifact returns the generated module-map file handle.
func (m ModuleMap) Artifact() artifact.Artifact { return m.art }

// UmbrellaHeader returns the umbrella header handle, if declared.
func (m ModuleMap) UmbrellaHeader() (artifact.Artifact, bool) {
	if m.umbrella == nil {
		return artifact.Artifact{}, false
	}
	return *m.umbrella, true
}
