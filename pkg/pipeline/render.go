package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/lanparty/pkg/cache"
	"github.com/matzehuels/lanparty/pkg/clique"
	"github.com/matzehuels/lanparty/pkg/graph"
	lpio "github.com/matzehuels/lanparty/pkg/io"
	"github.com/matzehuels/lanparty/pkg/netgraph"
	"github.com/matzehuels/lanparty/pkg/observability"
	"github.com/matzehuels/lanparty/pkg/render/nodelink"
)

// DefaultPNGScale is the PNG scale used when RenderOptions.Scale is zero.
const DefaultPNGScale = 2.0

// Render draws the analysed graph in the requested format. Graphviz outputs
// are cached per input hash and render options; JSON and edge exports are
// cheap and always regenerated.
func (r *Runner) Render(ctx context.Context, res *Result, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if res == nil || res.Graph == nil {
		return nil, fmt.Errorf("render: no graph")
	}

	switch opts.Format {
	case FormatJSON:
		return graph.MarshalGraph(res.Graph)
	case FormatEdges:
		var buf bytes.Buffer
		if err := lpio.WriteEdges(res.Graph, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	key := r.Keyer.ArtifactKey(res.InputHash, artifactKeyOpts(res.Report.Strategy, opts))
	if res.InputHash != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()
	data, err := RenderGraph(ctx, res.Graph, res.Clique, opts)
	elapsed := time.Since(start)
	hooks.OnRenderComplete(ctx, opts.Format, elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	r.Logger.Debug("rendered graph", "format", opts.Format, "bytes", len(data), "duration", elapsed)

	if res.InputHash != "" {
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return data, nil
}

// artifactKeyOpts lists the options that change the rendered bytes. Scale
// only affects PNG, so other formats keep one key across scales.
func artifactKeyOpts(strategy string, opts RenderOptions) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:    opts.Format,
		Strategy:  strategy,
		Engine:    string(opts.Engine),
		Highlight: opts.Highlight,
		Detailed:  opts.Detailed,
	}
	if opts.Format == FormatPNG {
		k.Scale = pngScale(opts.Scale)
	}
	return k
}

func pngScale(scale float64) float64 {
	if scale <= 0 {
		return DefaultPNGScale
	}
	return scale
}

// RenderGraph renders a graph without caching. members are highlighted when
// opts.Highlight is set.
func RenderGraph(ctx context.Context, g *netgraph.Graph, members []*netgraph.Node, opts RenderOptions) ([]byte, error) {
	var highlight []netgraph.NodeID
	if opts.Highlight {
		highlight = clique.IDs(members)
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Highlight: highlight, Detailed: opts.Detailed})

	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot, opts.Engine)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot, opts.Engine)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Engine, pngScale(opts.Scale))
	}
	return nil, ValidateFormat(opts.Format)
}
