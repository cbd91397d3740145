// Package render provides output format conversion for LAN map diagrams.
//
// The [nodelink] subpackage draws the graph with Graphviz and returns SVG.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/lanparty/pkg/render/nodelink
package render
