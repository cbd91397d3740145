package io

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lanparty/pkg/graph"
	"github.com/matzehuels/lanparty/pkg/netgraph"
)

// EdgeLines returns the distinct links of g as "from-to" lines in the order
// of [graph.FromNetgraph].
func EdgeLines(g *netgraph.Graph) []string {
	edges := graph.FromNetgraph(g).Edges
	lines := make([]string, len(edges))
	for i, e := range edges {
		lines[i] = e.From + string(netgraph.DefaultDelimiter) + e.To
	}
	return lines
}

// WriteEdges writes the distinct links of g to w, one per line.
func WriteEdges(g *netgraph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, line := range EdgeLines(g) {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportEdges writes the distinct links of g to a file at path.
func ExportEdges(g *netgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteEdges(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
