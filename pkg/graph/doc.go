// Package graph provides the JSON wire format for LAN maps and analysis
// reports.
//
// This package defines the canonical serialization used for the --json CLI
// output, API responses, cache entries and graph exports.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Report]: Serialization types (this package)
//   - pkg/netgraph.Graph: Internal adjacency representation
//
// Use [FromNetgraph] and [ToNetgraph] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link format. Node IDs are the dense identities assigned
// at build time, and each undirected edge appears once, lower ID first:
//
//	{
//	  "nodes": [{"id": 1, "name": "kh", "degree": 2}, {"id": 2, "name": "tc", "degree": 1}],
//	  "edges": [{"from": "kh", "to": "tc"}]
//	}
//
// Re-importing an export with [ToNetgraph] reproduces the same identities
// and adjacency, except that duplicate input edges are collapsed.
//
// # Reports
//
// A [Report] carries both answers of one analysis run along with the options
// that produced them and per-stage timings:
//
//	{
//	  "run_id": "6f1c…",
//	  "triangles": 7,
//	  "filter": "t",
//	  "clique": ["co", "de", "ka", "ta"],
//	  "password": "co,de,ka,ta",
//	  "strategy": "exact",
//	  "stats": {"nodes": 16, "edges": 32, "build_ms": 0.1, "triangles_ms": 0.02, "clique_ms": 0.05}
//	}
package graph
