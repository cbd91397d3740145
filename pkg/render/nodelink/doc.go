// Package nodelink renders LAN maps as node-link diagrams.
//
// # Overview
//
// This package produces undirected graph visualizations using Graphviz, where
// computers appear as rounded boxes connected by plain lines. The members of a
// clique can be highlighted so the answer stands out from the rest of the
// network.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Highlight: clique.IDs(members)})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, nodelink.EngineNeato)
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.EngineNeato, 2.0)
//
// # Layout Engines
//
// LAN maps have no natural direction, so the default engine is neato
// (spring model). dot, circo and fdp are available through [Engine].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
