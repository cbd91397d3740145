package netgraph

import (
	"fmt"
	"slices"
)

// sortAdjacency puts every neighbor list in ascending ID order. This is a
// one-time pass costing the sum of deg·log(deg) over all nodes; afterwards
// [Graph.Connected] can binary search and the search algorithms can restrict
// themselves to smaller or larger IDs.
func sortAdjacency(g *Graph) {
	for i := range g.nodes {
		slices.Sort(g.nodes[i].neighbors)
	}
	g.sorted = true
}

// Validate checks that the adjacency is symmetric with matching multiplicity
// and that every neighbor ID refers to a node of this graph. A built graph
// always validates; a failure indicates a construction bug.
func (g *Graph) Validate() error {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.ID.index() != i {
			return fmt.Errorf("node %q: id %d stored at slot %d", n.Name, n.ID, i)
		}
		for _, m := range n.neighbors {
			other := g.Node(m)
			if other == nil {
				return fmt.Errorf("node %q: neighbor id %d out of range", n.Name, m)
			}
			if m == n.ID {
				return fmt.Errorf("node %q: self-loop", n.Name)
			}
			if multiplicity(n.neighbors, m) != multiplicity(other.neighbors, n.ID) {
				return fmt.Errorf("edge %s-%s: asymmetric adjacency", n.Name, other.Name)
			}
		}
	}
	return nil
}

func multiplicity(ids []NodeID, id NodeID) int {
	count := 0
	for _, x := range ids {
		if x == id {
			count++
		}
	}
	return count
}
