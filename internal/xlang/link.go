package xlang

import (
	"github.com/vk/buildmerge/internal/artifact"
)

// LinkInput is a single library contribution to a link line.
type LinkInput struct {
	Library artifact.Artifact
	// Flags are extra linker flags the contributing target requires.
	Flags []string
}

// LinkContext is the ordered sequence of link inputs one target contributes.
// Order is significant: static-archive symbol resolution depends on
// dependents appearing before their dependencies.
type LinkContext struct {
	Inputs []LinkInput
}

// MergeLinkContexts concatenates the per-target link input sequences strictly
// in input order. Entries are never reordered or deduplicated across targets:
// collapsing two occurrences of the same archive can change which symbols a
// one-pass linker resolves.
func MergeLinkContexts(ctxs []LinkContext) LinkContext {
	n := 0
	for _, c := range ctxs {
		n += len(c.Inputs)
	}
	merged := make([]LinkInput, 0, n)
	for _, c := range ctxs {
		merged = append(merged, c.Inputs...)
	}
	return LinkContext{Inputs: merged}
}
