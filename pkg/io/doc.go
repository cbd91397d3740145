// Package io reads LAN maps from text or JSON and writes them back as edge
// lists.
//
// # Text Format
//
// One link per line, two names joined by a hyphen:
//
//	kh-tc
//	qp-kh
//	de-cg
//
// [ReadLines] strips a trailing carriage return from every line (so CRLF
// files work unchanged) and drops blank lines. It does not validate the
// lines; that is the job of pkg/netgraph, which reports the offending line
// number.
//
// # JSON Format
//
// [ImportLines] also accepts the node-link export written by pkg/graph when
// the path ends in ".json". The export is decoded, rebuilt and flattened back
// into edge lines with [EdgeLines], so callers see one input shape
// regardless of the file type. Isolated nodes do not survive this step
// because an edge list cannot express them.
//
// # Export
//
// Use [WriteEdges] or [ExportEdges] to write the distinct links of a graph as
// a canonical edge list (one line per undirected link, lower ID first):
//
//	err := io.ExportEdges(g, "lan.txt")
//
// # Concurrency
//
// All functions are safe for concurrent use; they only read the graph.
package io
