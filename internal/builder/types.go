package builder

import (
	"sync"
	"sync/atomic"

	"github.com/vk/buildmerge/internal/aggregate"
	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/dag"
)

// Graph is the primary artifact of the builder: the complete, validated
// analysis plan. Nodes gives ID-based lookup; the embedded dag holds the
// topology and mediates all topological queries.
type Graph struct {
	Nodes map[string]*Node

	dag *dag.Graph
}

// Node is one target awaiting analysis.
type Node struct {
	// ID is the unique node identifier, e.g. "library.netcore".
	ID string
	// Target is the declaring configuration block.
	Target *config.Target
	// Kind is the parsed rule kind of the target.
	Kind aggregate.RuleKind

	// Result is populated by the analyzer when the node completes. It is
	// written before any dependent is scheduled.
	Result *aggregate.Result
	// Err records an analysis failure or skip cause.
	Err error

	// depCount tracks unmet dependencies for the analyzer's scheduler.
	depCount atomic.Int32
	// skipOnce ensures a node is marked skipped and accounted exactly once.
	skipOnce sync.Once
}

// Dependencies returns the node's dependency IDs in declaration order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	return g.dag.Dependencies(id)
}

// Dependents returns the IDs of nodes depending on id.
func (g *Graph) Dependents(id string) ([]string, error) {
	return g.dag.Dependents(id)
}

// Roots returns the nodes with no dependencies, in declaration order.
func (g *Graph) Roots() []*Node {
	var out []*Node
	for _, id := range g.dag.Roots() {
		out = append(out, g.Nodes[id])
	}
	return out
}

// Order returns every node in declaration order.
func (g *Graph) Order() []*Node {
	var out []*Node
	for _, id := range g.dag.Nodes() {
		out = append(out, g.Nodes[id])
	}
	return out
}

// DecrementDepCount atomically decrements the unmet-dependency counter and
// returns the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// MarkSkipped records the skip cause and reports whether this call was the
// first to mark the node.
func (n *Node) MarkSkipped(cause error) bool {
	first := false
	n.skipOnce.Do(func() {
		n.Err = cause
		first = true
	})
	return first
}
