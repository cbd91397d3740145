package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lanparty/pkg/cache"
	"github.com/matzehuels/lanparty/pkg/clique"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/graph"
	"github.com/matzehuels/lanparty/pkg/netgraph"
	"github.com/matzehuels/lanparty/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeReport   = "report"
	keyTypeArtifact = "artifact"
)

// ctxCheckInterval is how many lines are added between context checks.
const ctxCheckInterval = 4096

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached reports. Zero uses cache.TTLReport.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → search pipeline with caching.
//
// The graph is always built so the result can be rendered or explored. A
// cached report skips the searches; it gets a fresh run ID and Cached set.
// Verify always recomputes.
func (r *Runner) Execute(ctx context.Context, lines []string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{InputHash: cache.HashLines(lines)}

	// Stage 1: Build
	g, buildTime, err := r.Build(ctx, lines, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = buildTime

	r.Logger.Info("built graph",
		"nodes", g.Len(),
		"edges", g.EdgeCount(),
		"duration", buildTime)

	key := r.Keyer.ReportKey(result.InputHash, opts.ReportKeyOpts())
	if !opts.Refresh && !opts.Verify {
		if report, ok := r.cachedReport(ctx, key); ok {
			members, err := lookupAll(g, report.Clique)
			if err == nil {
				report.RunID = uuid.NewString()
				report.Cached = true
				result.Report = report
				result.Clique = members
				result.CacheHit = true
				r.Logger.Info("using cached report",
					"run_id", report.RunID,
					"triangles", report.Triangles,
					"password", report.Password)
				return result, nil
			}
			r.Logger.Debug("cached report does not match graph", "error", err)
		}
	}

	// Stage 2: Search
	count, members, err := r.Search(ctx, g, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Clique = members

	if opts.Verify {
		if err := verify(g, opts, count, members); err != nil {
			return nil, err
		}
		r.Logger.Debug("verified results", "triangles", count, "clique", len(members))
	}

	result.Report = graph.Report{
		RunID:     uuid.NewString(),
		InputHash: result.InputHash,
		Triangles: count,
		Filter:    opts.Filter(),
		Clique:    names(members),
		Password:  clique.Password(members),
		Strategy:  string(opts.Strategy),
		Stats: graph.Stats{
			Nodes:       g.Len(),
			Edges:       g.EdgeCount(),
			BuildMS:     graph.Millis(result.Stats.BuildTime),
			TrianglesMS: graph.Millis(result.Stats.TrianglesTime),
			CliqueMS:    graph.Millis(result.Stats.CliqueTime),
		},
	}
	r.storeReport(ctx, key, result.Report)

	r.Logger.Info("analysed graph",
		"run_id", result.Report.RunID,
		"triangles", count,
		"clique", len(members),
		"strategy", opts.Strategy,
		"stats", result.Stats)

	return result, nil
}

// Build parses lines into a graph. Malformed lines are reported with
// ErrCodeMalformedInput.
func (r *Runner) Build(ctx context.Context, lines []string, opts Options) (*netgraph.Graph, time.Duration, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(lines))
	start := time.Now()

	g, err := build(ctx, lines, opts.NameLength)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, elapsed, err)
		return nil, elapsed, err
	}
	hooks.OnBuildComplete(ctx, g.Len(), g.EdgeCount(), elapsed, nil)
	return g, elapsed, nil
}

func build(ctx context.Context, lines []string, nameLength int) (*netgraph.Graph, error) {
	b := netgraph.NewBuilder(netgraph.WithNameLength(nameLength))
	for i, line := range lines {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := b.AddLine(line); err != nil {
			if errors.Is(err, netgraph.ErrMalformedInput) {
				return nil, lperrors.Wrap(lperrors.ErrCodeMalformedInput, err, "cannot build graph")
			}
			return nil, fmt.Errorf("build: %w", err)
		}
	}
	return b.Build(), nil
}

// Search counts triangles and finds the clique concurrently. Stage timings
// are written to stats when it is not nil.
func (r *Runner) Search(ctx context.Context, g *netgraph.Graph, opts Options, stats *Stats) (int, []*netgraph.Node, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return 0, nil, err
	}
	if stats == nil {
		stats = &Stats{}
	}
	hooks := observability.Pipeline()

	var count int
	var members []*netgraph.Node

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		start := time.Now()
		count = clique.CountTriangles(g, opts.Predicate())
		stats.TrianglesTime = time.Since(start)
		hooks.OnTrianglesComplete(egCtx, count, stats.TrianglesTime, nil)
		r.Logger.Debug("counted triangles", "count", count, "filter", opts.Filter(), "duration", stats.TrianglesTime)
		return nil
	})
	eg.Go(func() error {
		start := time.Now()
		found, err := clique.Find(egCtx, g, opts.Strategy, opts.Workers)
		stats.CliqueTime = time.Since(start)
		hooks.OnCliqueComplete(egCtx, string(opts.Strategy), len(found), stats.CliqueTime, err)
		if err != nil {
			return fmt.Errorf("clique: %w", err)
		}
		members = found
		r.Logger.Debug("found clique", "size", len(found), "strategy", opts.Strategy, "duration", stats.CliqueTime)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return 0, nil, err
	}
	return count, members, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) reportTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLReport
}

func (r *Runner) cachedReport(ctx context.Context, key string) (graph.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return graph.Report{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return graph.Report{}, false
	}
	report, err := graph.UnmarshalReport(data)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return graph.Report{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeReport)
	return report, true
}

func (r *Runner) storeReport(ctx context.Context, key string, report graph.Report) {
	data, err := graph.MarshalReport(report)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.reportTTL()); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeReport, len(data))
}

// verify cross-checks the search results with the independent algorithms.
func verify(g *netgraph.Graph, opts Options, count int, members []*netgraph.Node) error {
	if dedup := clique.CountTrianglesDedup(g, opts.Predicate()); dedup != count {
		return lperrors.New(lperrors.ErrCodeInternal, "triangle counters disagree: %d ordered, %d unordered", count, dedup)
	}
	if !clique.IsClique(g, clique.IDs(members)) {
		return lperrors.New(lperrors.ErrCodeInternal, "result %q is not a clique", clique.Password(members))
	}
	return nil
}

func names(nodes []*netgraph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func lookupAll(g *netgraph.Graph, names []string) ([]*netgraph.Node, error) {
	out := make([]*netgraph.Node, 0, len(names))
	for _, name := range names {
		n, ok := g.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown node %q", name)
		}
		out = append(out, n)
	}
	return out, nil
}
