/*
Package builder turns the loaded config model into the validated target graph
the analyzer executes. Construction runs in passes:

 1. Node creation: one node per declared target, kinds parsed and checked.
 2. Dependency linking: `deps` entries resolved by target name, edges added
    to the generic dag in declaration order.
 3. Validation and initialization: cycle detection, then unmet-dependency
    counters seeded from the final topology.
*/
package builder

import (
	"context"
	"fmt"

	"github.com/vk/buildmerge/internal/aggregate"
	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/dag"
)

// Build constructs a complete, validated target graph from a config model.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")

	graph := &Graph{
		Nodes: make(map[string]*Node),
		dag:   dag.New(),
	}

	byName := make(map[string]*Node)
	for _, target := range model.Targets {
		kind, err := aggregate.ParseKind(target.Kind)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target.Name, err)
		}
		node := &Node{ID: target.ID(), Target: target, Kind: kind}
		if _, dup := byName[target.Name]; dup {
			return nil, fmt.Errorf("duplicate target name %q", target.Name)
		}
		byName[target.Name] = node
		graph.Nodes[node.ID] = node
		graph.dag.AddNode(node.ID)
	}
	logger.Debug("Build: node creation complete.", "node_count", len(graph.Nodes))

	for _, target := range model.Targets {
		node := byName[target.Name]
		for _, depName := range target.Deps {
			dep, ok := byName[depName]
			if !ok {
				return nil, fmt.Errorf("target %q depends on unknown target %q", target.Name, depName)
			}
			if err := graph.dag.AddEdge(dep.ID, node.ID); err != nil {
				return nil, fmt.Errorf("linking %q -> %q: %w", depName, target.Name, err)
			}
		}
	}
	logger.Debug("Build: dependency linking complete.")

	if err := graph.dag.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}

	for id, node := range graph.Nodes {
		deps, err := graph.dag.Dependencies(id)
		if err != nil {
			return nil, fmt.Errorf("initializing counters for %s: %w", id, err)
		}
		node.depCount.Store(int32(len(deps)))
	}
	logger.Info("Build: graph construction successful.", "node_count", len(graph.Nodes))
	return graph, nil
}
