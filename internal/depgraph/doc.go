// Package depgraph implements the rowgraph dependency/invalidation
// graph: the record of which columns each formula column reads, and the
// algorithm that turns "rows R changed at column D" into a complete
// row-granular recompute map.
//
// ARCHITECTURE:
//
// Edge store:
// A directed multigraph indexed by both endpoints (two hash multimaps,
// byOut and byIn). Edges are identified by an incrementing id and are
// never deduplicated - each (out, in) pair may carry several edges,
// one per observed row-mapping pattern.
//
// Relation registry:
// Every edge owns exactly one Relation, the pluggable per-row mapping
// from changed input rows to affected output rows. The graph owns the
// relation's lifecycle: removing an edge releases its relation with
// exactly one of ResetAll (edge destroyed) or ResetRows (partial reset,
// edge retained).
//
// Invalidation:
// Invalidate runs an explicit-worklist traversal instead of recursion.
// Recursion over a deep formula chain risks stack exhaustion and loops
// forever on cycles; the worklist plus the grew-or-stop merge rule
// terminates on arbitrary graph shapes, cycles included.
//
// CONCURRENCY:
// The graph is single-threaded and synchronous. No internal locking;
// callers serialize access (one invalidation/recompute pass at a time
// per document). No operation blocks or performs I/O.
package depgraph
