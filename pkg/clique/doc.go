// Package clique implements the two searches lanparty runs over a built
// [netgraph.Graph]: counting filtered triangles and finding a large fully
// connected group of nodes.
//
// # Triangles
//
// [CountTriangles] walks A → B → C with ID(C) < ID(B) < ID(A) and checks the
// closing edge A–C. Because neighbor lists are sorted by ID, every triangle is
// discovered exactly once, from its highest-ID member, so no deduplication
// set is needed. [CountTrianglesDedup] is the unordered alternative that
// canonicalises every discovered triple into a [Triplet] and counts distinct
// keys; both must always agree.
//
// Filters are plain functions ([Predicate]) so callers can inject any rule.
// [AnyNameHasPrefix] is the usual one: "at least one computer name starts
// with t".
//
// # Maximum Clique
//
// [MaxClique] is a greedy single-pass search. For every seed node S it scans
// S's neighbors in ascending ID order and appends a neighbor when its ID is
// larger than the last appended member and it is connected to every current
// member. The largest candidate over all seeds wins.
//
// The greedy search is fast and recovers the answer on inputs built around
// one dominant clique, but it is not a correct maximum-clique algorithm in
// general: an early neighbor that is not part of the best clique can block
// the rest. [MaxCliqueExact] runs Bron–Kerbosch with pivoting instead and is
// guaranteed to return a maximum clique at exponential worst-case cost.
// Choose between them with [Strategy].
//
// # Concurrency
//
// All functions only read the graph and can run concurrently on the same
// graph. [MaxCliqueParallel] shards the seed loop of [MaxClique] over worker
// goroutines and returns exactly the same clique.
package clique
