// Package pipeline provides the analysis pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Parse edge lines into a [netgraph.Graph]
//  2. Search: Count filtered triangles and find the largest clique, in parallel
//  3. Render: Optionally draw the graph with the clique highlighted
//
// Reports and rendered artifacts are cached by input hash and options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, lines, pipeline.Options{Prefix: "t"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Report.Triangles, res.Report.Password)
//
// Render the analysed graph:
//
//	svg, err := runner.Render(ctx, res, pipeline.RenderOptions{Format: pipeline.FormatSVG})
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/lanparty/pkg/cache"
	"github.com/matzehuels/lanparty/pkg/clique"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/graph"
	"github.com/matzehuels/lanparty/pkg/netgraph"
	"github.com/matzehuels/lanparty/pkg/render/nodelink"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultPrefix is the triangle filter used when none is given.
const DefaultPrefix = "t"

// Format constants for rendered outputs.
const (
	FormatDOT   = "dot"
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatPDF   = "pdf"
	FormatJSON  = "json"
	FormatEdges = "edges"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:   true,
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
	FormatJSON:  true,
	FormatEdges: true,
}

// =============================================================================
// Options - Analysis Configuration
// =============================================================================

// Options configures one analysis run.
type Options struct {
	// Prefix filters triangles to those with at least one name starting
	// with it. Ignored when All is set.
	Prefix string `json:"prefix"`

	// All counts every triangle.
	All bool `json:"all,omitempty"`

	Strategy   clique.Strategy `json:"strategy,omitempty"`
	Workers    int             `json:"workers,omitempty"`
	NameLength int             `json:"name_length,omitempty"`

	// Refresh ignores cached reports and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Verify cross-checks the triangle count with the unordered counter and
	// the clique with a closure check.
	Verify bool `json:"verify,omitempty"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.NameLength == 0 {
		o.NameLength = netgraph.DefaultNameLength
	}
	if o.NameLength < 0 {
		return lperrors.New(lperrors.ErrCodeInvalidInput, "name length must be positive")
	}
	s, err := clique.ParseStrategy(string(o.Strategy))
	if err != nil {
		return lperrors.Wrap(lperrors.ErrCodeInvalidStrategy, err, "invalid strategy")
	}
	o.Strategy = s
	if err := lperrors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if !o.All {
		if err := lperrors.ValidatePrefix(o.Prefix, o.NameLength); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns the filter as reported: the prefix, or "" for all.
func (o *Options) Filter() string {
	if o.All {
		return ""
	}
	return o.Prefix
}

// Predicate returns the triangle predicate for these options.
func (o *Options) Predicate() clique.Predicate {
	if o.All {
		return nil
	}
	return clique.AnyNameHasPrefix(o.Prefix)
}

// ReportKeyOpts returns the cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		Prefix:     o.Filter(),
		All:        o.All,
		Strategy:   string(o.Strategy),
		NameLength: o.NameLength,
	}
}

// RenderOptions configures the render stage.
type RenderOptions struct {
	Format    string
	Engine    nodelink.Engine
	Highlight bool // mark clique members
	Detailed  bool
	Scale     float64 // PNG only
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return lperrors.New(lperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf, json, edges)", format)
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of an analysis run.
type Result struct {
	// Report is the serializable result.
	Report graph.Report

	// Graph is the built graph. It is rebuilt even when the report came from
	// the cache, so callers can always render or explore it.
	Graph *netgraph.Graph

	// Clique holds the clique members, sorted by name.
	Clique []*netgraph.Node

	// InputHash is the content hash of the input lines.
	InputHash string

	// Timings of the stages that actually ran.
	Stats Stats

	// CacheHit reports whether the searches were skipped.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BuildTime     time.Duration
	TrianglesTime time.Duration
	CliqueTime    time.Duration
}

// String formats the stage timings for log output.
func (s Stats) String() string {
	return fmt.Sprintf("build=%s triangles=%s clique=%s",
		s.BuildTime.Round(time.Microsecond),
		s.TrianglesTime.Round(time.Microsecond),
		s.CliqueTime.Round(time.Microsecond))
}
