package clique

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lanparty/pkg/netgraph"
)

// Strategy selects the maximum-clique algorithm.
type Strategy string

const (
	// StrategyGreedy is the single-pass greedy extension per seed node.
	// It is the default and matches the reference behaviour.
	StrategyGreedy Strategy = "greedy"

	// StrategyExact is Bron–Kerbosch with pivoting. It always returns a
	// maximum clique but may take exponential time on adversarial graphs.
	StrategyExact Strategy = "exact"
)

// ErrUnknownStrategy is returned by [ParseStrategy] for unrecognised names.
var ErrUnknownStrategy = errors.New("unknown clique strategy")

// ParseStrategy parses a strategy name. The empty string selects
// [StrategyGreedy].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyExact:
		return StrategyExact, nil
	}
	return "", fmt.Errorf("%w: %q (must be 'greedy' or 'exact')", ErrUnknownStrategy, s)
}

// Find runs the selected strategy. For [StrategyGreedy], workers > 1 shards
// the seed loop with [MaxCliqueParallel]; the result does not depend on the
// worker count.
func Find(ctx context.Context, g *netgraph.Graph, s Strategy, workers int) ([]*netgraph.Node, error) {
	switch s {
	case "", StrategyGreedy:
		if workers == 1 {
			return MaxClique(g), nil
		}
		return MaxCliqueParallel(ctx, g, workers)
	case StrategyExact:
		return MaxCliqueExact(ctx, g)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// =============================================================================
// Greedy
// =============================================================================

// MaxClique returns the largest clique found by greedy extension from every
// seed node, sorted by name. If several seeds yield candidates of the same
// maximal size, the one from the lowest seed ID is returned.
//
// An empty graph yields an empty slice; a graph without edges yields its
// first node alone.
func MaxClique(g *netgraph.Graph) []*netgraph.Node {
	var best, buf []netgraph.NodeID
	for _, seed := range g.Nodes() {
		buf = extend(g, seed, buf)
		if len(buf) > len(best) {
			best = slices.Clone(buf)
		}
	}
	return sortedByName(g, best)
}

// MaxCliqueParallel computes the same result as [MaxClique] with the seed loop
// sharded over workers goroutines. Each worker keeps its own best candidate;
// results are reduced by size, then by lowest seed ID. workers <= 0 uses
// GOMAXPROCS.
func MaxCliqueParallel(ctx context.Context, g *netgraph.Graph, workers int) ([]*netgraph.Node, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	nodes := g.Nodes()
	workers = max(1, min(workers, len(nodes)))

	type candidate struct {
		seed    netgraph.NodeID
		members []netgraph.NodeID
	}
	results := make([]candidate, workers)

	eg, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		eg.Go(func() error {
			var local candidate
			var buf []netgraph.NodeID
			for i := w; i < len(nodes); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				buf = extend(g, nodes[i], buf)
				if len(buf) > len(local.members) {
					local = candidate{seed: nodes[i].ID, members: slices.Clone(buf)}
				}
			}
			results[w] = local
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	best := slices.MaxFunc(results, func(a, b candidate) int {
		if c := cmp.Compare(len(a.members), len(b.members)); c != 0 {
			return c
		}
		// Lower seed wins ties, so it compares as "larger".
		return cmp.Compare(b.seed, a.seed)
	})
	return sortedByName(g, best.members), nil
}

// extend grows a candidate from seed in a single forward pass over the seed's
// sorted neighbors. The candidate is written into buf, which is returned.
func extend(g *netgraph.Graph, seed *netgraph.Node, buf []netgraph.NodeID) []netgraph.NodeID {
	buf = append(buf[:0], seed.ID)
	last := seed.ID
	for _, n := range seed.Neighbors() {
		if n <= last {
			continue
		}
		if connectedToAll(g, n, buf) {
			buf = append(buf, n)
			last = n
		}
	}
	return buf
}

func connectedToAll(g *netgraph.Graph, id netgraph.NodeID, members []netgraph.NodeID) bool {
	for _, m := range members {
		if !g.Connected(id, m) {
			return false
		}
	}
	return true
}

// =============================================================================
// Exact
// =============================================================================

// MaxCliqueExact returns a maximum clique using Bron–Kerbosch with pivoting
// and a size bound. Unlike [MaxClique] the result is always maximum. It checks
// ctx between recursion steps and returns ctx.Err() when cancelled.
func MaxCliqueExact(ctx context.Context, g *netgraph.Graph) ([]*netgraph.Node, error) {
	bk := &bronKerbosch{ctx: ctx, g: g, adj: make([][]netgraph.NodeID, g.Len())}
	all := make([]netgraph.NodeID, 0, g.Len())
	for _, n := range g.Nodes() {
		bk.adj[int(n.ID)-1] = slices.Compact(slices.Clone(n.Neighbors()))
		all = append(all, n.ID)
	}
	if err := bk.search(nil, all, nil); err != nil {
		return nil, err
	}
	return sortedByName(g, bk.best), nil
}

type bronKerbosch struct {
	ctx   context.Context
	g     *netgraph.Graph
	adj   [][]netgraph.NodeID // deduplicated, sorted neighbor sets
	best  []netgraph.NodeID
	steps int
}

func (bk *bronKerbosch) neighbors(id netgraph.NodeID) []netgraph.NodeID {
	return bk.adj[int(id)-1]
}

// search explores cliques extending r with candidates p, excluding x.
// p and x are sorted ID sets.
func (bk *bronKerbosch) search(r, p, x []netgraph.NodeID) error {
	if bk.steps++; bk.steps%1024 == 0 {
		if err := bk.ctx.Err(); err != nil {
			return err
		}
	}
	if len(p) == 0 && len(x) == 0 {
		if len(r) > len(bk.best) {
			bk.best = slices.Clone(r)
		}
		return nil
	}
	if len(r)+len(p) <= len(bk.best) {
		return nil
	}

	pivot := bk.pivot(p, x)
	for _, v := range difference(p, bk.neighbors(pivot)) {
		nv := bk.neighbors(v)
		if err := bk.search(append(r, v), intersect(p, nv), intersect(x, nv)); err != nil {
			return err
		}
		p = remove(p, v)
		x = insert(x, v)
	}
	return nil
}

// pivot picks the vertex of p ∪ x with the most neighbors in p.
func (bk *bronKerbosch) pivot(p, x []netgraph.NodeID) netgraph.NodeID {
	var best netgraph.NodeID
	bestCount := -1
	for _, set := range [][]netgraph.NodeID{p, x} {
		for _, u := range set {
			if c := len(intersect(p, bk.neighbors(u))); c > bestCount {
				best, bestCount = u, c
			}
		}
	}
	return best
}

func intersect(a, b []netgraph.NodeID) []netgraph.NodeID {
	out := make([]netgraph.NodeID, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func difference(a, b []netgraph.NodeID) []netgraph.NodeID {
	out := make([]netgraph.NodeID, 0, len(a))
	j := 0
	for _, v := range a {
		for j < len(b) && b[j] < v {
			j++
		}
		if j < len(b) && b[j] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

func remove(set []netgraph.NodeID, v netgraph.NodeID) []netgraph.NodeID {
	if i, ok := slices.BinarySearch(set, v); ok {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return set
}

func insert(set []netgraph.NodeID, v netgraph.NodeID) []netgraph.NodeID {
	i, ok := slices.BinarySearch(set, v)
	if ok {
		return set
	}
	return slices.Insert(slices.Clone(set), i, v)
}

// =============================================================================
// Helpers
// =============================================================================

// IsClique reports whether ids are distinct and pairwise connected.
func IsClique(g *netgraph.Graph, ids []netgraph.NodeID) bool {
	for i, a := range ids {
		if g.Node(a) == nil {
			return false
		}
		for _, b := range ids[i+1:] {
			if a == b || !g.Connected(a, b) {
				return false
			}
		}
	}
	return true
}

// IDs returns the IDs of nodes in order.
func IDs(nodes []*netgraph.Node) []netgraph.NodeID {
	out := make([]netgraph.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// Password joins node names with commas, in the given order.
func Password(nodes []*netgraph.Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return strings.Join(names, ",")
}

func sortedByName(g *netgraph.Graph, ids []netgraph.NodeID) []*netgraph.Node {
	out := make([]*netgraph.Node, len(ids))
	for i, id := range ids {
		out[i] = g.Node(id)
	}
	slices.SortFunc(out, func(a, b *netgraph.Node) int { return strings.Compare(a.Name, b.Name) })
	return out
}
