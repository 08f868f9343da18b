// Package dag provides the generic dependency graph underneath the target
// graph: insertion-ordered adjacency, cycle detection, and topology queries.
// Edge order is preserved because downstream link-input merging depends on
// declaration order.
package dag

import (
	"fmt"
	"sync"
)

// Graph is a directed acyclic graph keyed by node ID. Safe for concurrent
// reads after construction; construction itself is guarded.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
	order []string
}

type node struct {
	id         string
	deps       []string
	dependents []string
	depSet     map[string]bool
}

// New returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode registers a node ID. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id, depSet: make(map[string]bool)}
	g.order = append(g.order, id)
}

// AddEdge records that toID depends on fromID. Both nodes must exist and
// self-references are rejected. Duplicate edges collapse silently.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s", fromID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if to.depSet[fromID] {
		return nil
	}
	to.depSet[fromID] = true
	to.deps = append(to.deps, fromID)
	from.dependents = append(from.dependents, toID)
	return nil
}

// Nodes returns every node ID in insertion order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the IDs a node depends on, in edge insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out, nil
}

// Dependents returns the IDs depending on a node, in edge insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, len(n.dependents))
	copy(out, n.dependents)
	return out, nil
}

// Roots returns the IDs with no dependencies, in insertion order.
func (g *Graph) Roots() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for _, id := range g.order {
		if len(g.nodes[id].deps) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// DetectCycles returns an error naming a node on the first cycle found, or
// nil when the graph is acyclic.
func (g *Graph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))

	var visit func(n *node) error
	visit = func(n *node) error {
		switch state[n.id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}
		state[n.id] = visiting
		for _, dep := range n.deps {
			if err := visit(g.nodes[dep]); err != nil {
				return err
			}
		}
		state[n.id] = done
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
