// Package netgraph provides the immutable undirected graph that lanparty
// analyses: a LAN map where every node is a computer with a short fixed-length
// name and every edge is a direct link between two computers.
//
// # Overview
//
// A [Graph] is built once from edge lines of the form "ka-co" and never
// mutated afterwards. Every node receives a dense [NodeID] in order of first
// appearance in the input, starting at 1. IDs are only used for ordering: the
// algorithms in package clique restrict themselves to "neighbors with a
// smaller (or larger) ID" so that each unordered combination of nodes is
// visited exactly once.
//
// # Basic Usage
//
// Parse a slice of lines directly:
//
//	g, err := netgraph.Parse([]string{"aa-bb", "bb-cc", "cc-aa"})
//	if err != nil {
//	    var mErr *netgraph.MalformedInputError
//	    if errors.As(err, &mErr) {
//	        // mErr.Line, mErr.Text, mErr.Reason
//	    }
//	}
//
// Or feed lines one at a time with a [Builder]:
//
//	b := netgraph.NewBuilder(netgraph.WithNameLength(2))
//	for _, line := range lines {
//	    if err := b.AddLine(line); err != nil {
//	        return err
//	    }
//	}
//	g := b.Build()
//
// # Ownership
//
// The graph stores its nodes by value in a single arena slice. Adjacency is
// expressed as NodeIDs into that arena, so nodes never hold references to one
// another. [Graph.Node] returns a pointer into the arena that must be treated
// as read-only.
//
// # Duplicate Edges
//
// An edge listed twice in the input produces two entries in each endpoint's
// neighbor list. This multiplicity is preserved and checked by
// [Graph.Validate]; the algorithms skip repeated neighbors while iterating.
//
// # Concurrency
//
// A built Graph is read-only and safe for concurrent use by any number of
// goroutines. A Builder is not safe for concurrent use.
package netgraph
