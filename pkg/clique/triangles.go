package clique

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lanparty/pkg/netgraph"
)

// Predicate decides whether a triangle counts. The three nodes are passed in
// ascending ID order. A nil Predicate accepts every triangle.
type Predicate func(a, b, c *netgraph.Node) bool

// AnyNameHasPrefix accepts triangles where at least one node name starts with
// prefix. An empty prefix accepts everything.
func AnyNameHasPrefix(prefix string) Predicate {
	return func(a, b, c *netgraph.Node) bool {
		return strings.HasPrefix(a.Name, prefix) ||
			strings.HasPrefix(b.Name, prefix) ||
			strings.HasPrefix(c.Name, prefix)
	}
}

// Triplet is a canonical unordered triple of node IDs with A < B < C.
// Two triplets over the same nodes are equal regardless of discovery order,
// so Triplet can be used directly as a map key.
type Triplet struct {
	A, B, C netgraph.NodeID
}

// NewTriplet canonicalises three distinct IDs.
func NewTriplet(x, y, z netgraph.NodeID) Triplet {
	if x > y {
		x, y = y, x
	}
	if y > z {
		y, z = z, y
	}
	if x > y {
		x, y = y, x
	}
	return Triplet{A: x, B: y, C: z}
}

// Names returns the member names in ID order.
func (t Triplet) Names(g *netgraph.Graph) [3]string {
	return [3]string{g.Node(t.A).Name, g.Node(t.B).Name, g.Node(t.C).Name}
}

// CountTriangles returns the number of distinct triangles accepted by pred.
func CountTriangles(g *netgraph.Graph, pred Predicate) int {
	count := 0
	EachTriangle(g, pred, func(Triplet) bool {
		count++
		return true
	})
	return count
}

// EachTriangle calls fn for every triangle accepted by pred, each exactly
// once. Enumeration stops early when fn returns false.
//
// The graph must be built (neighbor lists sorted); EachTriangle relies on the
// ordering to stop scanning a neighbor list at the first ID that is not
// smaller than the current node.
func EachTriangle(g *netgraph.Graph, pred Predicate, fn func(Triplet) bool) {
	if !g.Sorted() && g.Len() > 0 {
		panic("clique: graph neighbor lists are not sorted")
	}
	for _, a := range g.Nodes() {
		var prevB netgraph.NodeID
		for _, bID := range a.Neighbors() {
			if bID >= a.ID {
				break
			}
			if bID == prevB {
				continue
			}
			prevB = bID
			b := g.Node(bID)

			var prevC netgraph.NodeID
			for _, cID := range b.Neighbors() {
				if cID >= bID {
					break
				}
				if cID == prevC {
					continue
				}
				prevC = cID
				if !g.Connected(a.ID, cID) {
					continue
				}
				c := g.Node(cID)
				if pred != nil && !pred(c, b, a) {
					continue
				}
				if !fn(Triplet{A: cID, B: bID, C: a.ID}) {
					return
				}
			}
		}
	}
}

// CountTrianglesDedup counts triangles without relying on ID ordering: it
// visits every ordered walk A → B → C, canonicalises the triple and counts
// distinct keys. It exists as an independent cross-check of [CountTriangles].
func CountTrianglesDedup(g *netgraph.Graph, pred Predicate) int {
	seen := make(map[Triplet]struct{})
	count := 0
	for _, a := range g.Nodes() {
		for _, bID := range a.Neighbors() {
			for _, cID := range g.Neighbors(bID) {
				if cID == a.ID || !g.Connected(a.ID, cID) {
					continue
				}
				t := NewTriplet(a.ID, bID, cID)
				if _, ok := seen[t]; ok {
					continue
				}
				seen[t] = struct{}{}
				mustBeTriangle(g, t)
				if pred == nil || pred(g.Node(t.A), g.Node(t.B), g.Node(t.C)) {
					count++
				}
			}
		}
	}
	return count
}

// mustBeTriangle panics if any edge of t is missing. Reaching it with a
// broken triple means the adjacency itself is corrupt.
func mustBeTriangle(g *netgraph.Graph, t Triplet) {
	if !g.Connected(t.A, t.B) || !g.Connected(t.B, t.C) || !g.Connected(t.A, t.C) {
		panic(fmt.Sprintf("clique: triple %v is not a triangle", t))
	}
}
