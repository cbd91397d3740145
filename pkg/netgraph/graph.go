package netgraph

import (
	"errors"
	"slices"
)

var (
	// ErrMalformedInput is matched by every [MalformedInputError]. An edge line
	// that cannot be split into two names of the configured length is never
	// skipped, since dropping it would silently change the topology.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyGraph is returned by [Graph.RequireNodes] when the graph has no
	// nodes. Counting and clique search treat an empty graph as valid input.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrFrozen is returned by [Builder.AddLine] and [Builder.AddEdge] once
	// [Builder.Build] has been called.
	ErrFrozen = errors.New("graph is already built")
)

// NodeID is the dense identity of a node. IDs start at 1 and are assigned in
// strict order of first appearance in the input. The zero value is never a
// valid ID.
type NodeID int32

// index returns the arena slot of the node.
func (id NodeID) index() int { return int(id) - 1 }

// Node is a named vertex of the LAN map.
type Node struct {
	Name string // Fixed-length computer name, e.g. "ka"
	ID   NodeID // Dense identity, unique within the graph

	neighbors []NodeID
}

// Neighbors returns the node's neighbor IDs in ascending ID order once the
// graph is built. The slice is a read-only view.
func (n *Node) Neighbors() []NodeID { return n.neighbors }

// Degree returns the number of neighbor entries, counting duplicated edges.
func (n *Node) Degree() int { return len(n.neighbors) }

// Graph is an undirected graph that owns all of its nodes.
//
// The zero value is an empty graph. Use [Parse] or a [Builder] to construct a
// populated one. A Graph is immutable after construction.
type Graph struct {
	nodes  []Node
	byName map[string]NodeID
	edges  int
	sorted bool
}

func newGraph() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges accepted from the input, including
// duplicates.
func (g *Graph) EdgeCount() int { return g.edges }

// Sorted reports whether every neighbor list is in ascending ID order.
func (g *Graph) Sorted() bool { return g.sorted }

// Node returns the node with the given ID, or nil if the ID is out of range.
// The returned pointer refers into the graph's arena and must not be modified.
func (g *Graph) Node(id NodeID) *Node {
	i := id.index()
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	return &g.nodes[i]
}

// Lookup returns the node with the given name.
func (g *Graph) Lookup(name string) (*Node, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return &g.nodes[id.index()], true
}

// Nodes returns every node in ID order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = &g.nodes[i]
	}
	return out
}

// Neighbors returns the neighbor IDs of id, or nil for an unknown ID.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	if n := g.Node(id); n != nil {
		return n.neighbors
	}
	return nil
}

// Degree returns the degree of id, or 0 for an unknown ID.
func (g *Graph) Degree(id NodeID) int { return len(g.Neighbors(id)) }

// Connected reports whether a and b share an edge. On a built graph it runs a
// binary search over the shorter of the two neighbor lists.
func (g *Graph) Connected(a, b NodeID) bool {
	na, nb := g.Node(a), g.Node(b)
	if na == nil || nb == nil {
		return false
	}
	if len(nb.neighbors) < len(na.neighbors) {
		na, b = nb, a
	}
	if g.sorted {
		_, found := slices.BinarySearch(na.neighbors, b)
		return found
	}
	return slices.Contains(na.neighbors, b)
}

// Names maps ids to node names, preserving order.
func (g *Graph) Names(ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := g.Node(id); n != nil {
			out = append(out, n.Name)
		}
	}
	return out
}

// RequireNodes returns ErrEmptyGraph if the graph has no nodes.
func (g *Graph) RequireNodes() error {
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}
	return nil
}
