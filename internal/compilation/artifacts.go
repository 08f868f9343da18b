package compilation

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// Artifacts are a target's own compilation outputs-in-waiting: the sources it
// compiles, sources passed through uncompiled, extra headers, and the archive
// the compile step will produce, if any.
type Artifacts struct {
	srcs            []artifact.Artifact
	nonCompiledSrcs []artifact.Artifact
	additionalHdrs  []artifact.Artifact
	archive         *artifact.Artifact
}

// NewArtifacts bundles a target's declared sources. archive is nil when the
// target produces no archive (for example, it has no compilable sources).
func NewArtifacts(srcs, nonCompiledSrcs, additionalHdrs []artifact.Artifact, archive *artifact.Artifact) *Artifacts {
	return &Artifacts{
		srcs:            srcs,
		nonCompiledSrcs: nonCompiledSrcs,
		additionalHdrs:  additionalHdrs,
		archive:         archive,
	}
}

// Srcs returns the declared sources, headers and objects included.
func (a *Artifacts) Srcs() []artifact.Artifact { return a.srcs }

// NonCompiledSrcs returns sources shipped to the action uncompiled.
func (a *Artifacts) NonCompiledSrcs() []artifact.Artifact { return a.nonCompiledSrcs }

// AdditionalHdrs returns extra headers declared alongside the sources.
func (a *Artifacts) AdditionalHdrs() []artifact.Artifact { return a.additionalHdrs }

// Archive returns the produced archive handle, if one exists.
func (a *Artifacts) Archive() (artifact.Artifact, bool) {
	if a.archive == nil {
		return artifact.Artifact{}, false
	}
	return *a.archive, true
}
