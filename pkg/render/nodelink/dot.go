package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lanparty/pkg/netgraph"
	"github.com/matzehuels/lanparty/pkg/render"
)

// Engine names a Graphviz layout engine.
type Engine string

// Supported layout engines.
const (
	EngineNeato Engine = "neato"
	EngineDot   Engine = "dot"
	EngineCirco Engine = "circo"
	EngineFdp   Engine = "fdp"
)

// ParseEngine validates an engine name. The empty string selects neato.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(s); e {
	case "":
		return EngineNeato, nil
	case EngineNeato, EngineDot, EngineCirco, EngineFdp:
		return e, nil
	}
	return "", fmt.Errorf("invalid engine: %q (must be one of: neato, dot, circo, fdp)", s)
}

func (e Engine) layout() graphviz.Layout {
	switch e {
	case EngineDot:
		return graphviz.DOT
	case EngineCirco:
		return graphviz.CIRCO
	case EngineFdp:
		return graphviz.FDP
	}
	return graphviz.NEATO
}

// Options configures node-link diagram rendering.
type Options struct {
	// Highlight lists the nodes to emphasise, typically a clique. Edges
	// between two highlighted nodes are drawn bold.
	Highlight []netgraph.NodeID

	// Detailed adds the node ID and degree to every label.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. Duplicate links are drawn
// once. Nodes and edges are emitted in ID order so the output is stable.
func ToDOT(g *netgraph.Graph, opts Options) string {
	hl := slices.Clone(opts.Highlight)
	slices.Sort(hl)
	marked := func(id netgraph.NodeID) bool {
		_, ok := slices.BinarySearch(hl, id)
		return ok
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [color=\"#9e9e9e\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(fmtAttrs(n, opts.Detailed, marked(n.ID)), ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		var prev netgraph.NodeID
		for _, id := range n.Neighbors() {
			if id <= n.ID || id == prev {
				continue
			}
			prev = id
			other := g.Node(id)
			if marked(n.ID) && marked(id) {
				fmt.Fprintf(&buf, "  %q -- %q [color=\"#d32f2f\", penwidth=3];\n", n.Name, other.Name)
			} else {
				fmt.Fprintf(&buf, "  %q -- %q;\n", n.Name, other.Name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *netgraph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	return fmt.Sprintf("%s\nid: %d\ndegree: %d", n.Name, n.ID, n.Degree())
}

func fmtAttrs(n *netgraph.Node, detailed, highlighted bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if highlighted {
		attrs = append(attrs, "fillcolor=\"#ffcdd2\"", "color=\"#d32f2f\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz with the given engine.
func RenderSVG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine.layout())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container instead of using Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, engine Engine, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
