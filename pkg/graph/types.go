package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/lanparty/pkg/netgraph"
)

// =============================================================================
// Graph - LAN Map Serialization
// =============================================================================

// Graph is the canonical serialization format for a LAN map.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a serialized computer.
type Node struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

// Edge is a serialized undirected link, lower ID first.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FromNetgraph converts a built graph to its wire format. Nodes are listed in
// ID order; duplicate links are emitted once.
func FromNetgraph(g *netgraph.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.Len()),
		Edges: []Edge{},
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{ID: int(n.ID), Name: n.Name, Degree: n.Degree()})
		var prev netgraph.NodeID
		for _, id := range n.Neighbors() {
			if id <= n.ID || id == prev {
				continue
			}
			prev = id
			out.Edges = append(out.Edges, Edge{From: n.Name, To: g.Node(id).Name})
		}
	}
	return out
}

// ToNetgraph rebuilds a graph from its wire format. Nodes are registered in
// ascending ID order so identities survive the round trip. The name length is
// taken from the first node.
func ToNetgraph(gj Graph) (*netgraph.Graph, error) {
	nodes := slices.Clone(gj.Nodes)
	slices.SortFunc(nodes, func(a, b Node) int { return a.ID - b.ID })

	var opts []netgraph.Option
	if len(nodes) > 0 {
		opts = append(opts, netgraph.WithNameLength(len([]rune(nodes[0].Name))))
	}
	b := netgraph.NewBuilder(opts...)
	for _, n := range nodes {
		if err := b.AddNode(n.Name); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	for _, e := range gj.Edges {
		if err := b.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
		}
	}
	return b.Build(), nil
}

// UnmarshalGraph decodes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Report - Analysis Result
// =============================================================================

// Report is the result of one analysis run.
type Report struct {
	RunID     string   `json:"run_id"`
	InputHash string   `json:"input_hash,omitempty"`
	Triangles int      `json:"triangles"`
	Filter    string   `json:"filter"`
	Clique    []string `json:"clique"`
	Password  string   `json:"password"`
	Strategy  string   `json:"strategy"`
	Stats     Stats    `json:"stats"`
	Cached    bool     `json:"cached,omitempty"`
}

// Stats holds sizes and per-stage timings in milliseconds.
type Stats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	BuildMS     float64 `json:"build_ms"`
	TrianglesMS float64 `json:"triangles_ms"`
	CliqueMS    float64 `json:"clique_ms"`
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// MarshalReport encodes a report as compact JSON.
func MarshalReport(r Report) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport decodes a report.
func UnmarshalReport(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}
