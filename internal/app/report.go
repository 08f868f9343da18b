package app

import (
	"encoding/json"
	"io"

	"github.com/vk/buildmerge/internal/analyzer"
	"github.com/vk/buildmerge/internal/artifact"
	"github.com/vk/buildmerge/internal/builder"
	"github.com/vk/buildmerge/internal/descriptor"
)

// targetReport is the per-target slice of the machine-readable report.
type targetReport struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	Mode           string   `json:"mode"`
	Sources        []string `json:"sources,omitempty"`
	PublicHeaders  []string `json:"public_headers,omitempty"`
	PrivateHeaders []string `json:"private_headers,omitempty"`
	Includes       []string `json:"includes,omitempty"`
	Defines        []string `json:"defines,omitempty"`
	ModuleMaps     []string `json:"module_maps,omitempty"`
	Archive        string   `json:"archive,omitempty"`
	LinkInputs     []string `json:"link_inputs,omitempty"`
}

type report struct {
	Targets []targetReport `json:"targets"`
}

// writeReport renders one JSON document over all analyzed targets, in
// declaration order.
func (a *App) writeReport(w io.Writer, graph *builder.Graph, an *analyzer.Analyzer) error {
	var rep report
	for _, n := range graph.Order() {
		res := n.Result
		if res == nil {
			continue
		}
		compile := res.CrossCompileContext()
		tr := targetReport{
			ID:             n.ID,
			Kind:           n.Kind.String(),
			Mode:           res.Mode().String(),
			Sources:        artifactPaths(res.Descriptor().Transitive(descriptor.Source)),
			PublicHeaders:  artifactPaths(compile.Headers),
			PrivateHeaders: artifactPaths(compile.PrivateHeaders),
			Includes:       compile.Includes,
			Defines:        compile.Defines,
			ModuleMaps:     artifactPaths(res.Descriptor().Transitive(descriptor.ModuleMap)),
		}
		if archive, ok := res.CompiledArchive(); ok {
			tr.Archive = archive.Path
		}
		if link, ok := an.ExportedLink(n.ID); ok {
			for _, in := range link.Inputs {
				tr.LinkInputs = append(tr.LinkInputs, in.Library.Path)
			}
		}
		rep.Targets = append(rep.Targets, tr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func artifactPaths(in []artifact.Artifact) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, a.Path)
	}
	return out
}
