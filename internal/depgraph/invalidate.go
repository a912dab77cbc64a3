package depgraph

import (
	"log/slog"

	"github.com/rowgraph/rowgraph/internal/rowset"
)

// task is one pending unit of invalidation work: rows changed at node.
type task struct {
	node Node
	rows *rowset.Set
}

// Invalidate marks dirtyRows of dirtyNode changed and accumulates into
// recompute every node that transitively needs recomputation, at row
// granularity.
//
// If includeSelf is false the seed node itself is not merged (used when
// the change originates from raw, non-formula data: the raw node is
// never "recomputed", but its dependents still must be). The flag
// applies to the seed task only; every propagated task merges.
//
// The traversal uses an explicit LIFO worklist instead of recursion.
// This is a required property, not a style choice: recursion over a
// deep formula chain risks stack exhaustion, and over a cycle it never
// returns. Termination follows from the merge rule below: each node's
// recorded set is monotonically non-decreasing and bounded above by
// ALL, and a task only propagates when it strictly grew its node's set.
//
// Merge rule, per popped task (node, rows):
//  1. recompute[node] already ALL: the node is maximal, the task stops.
//  2. rows is ALL: promote recompute[node] to ALL and drop all of
//     node's own outgoing dependency edges (a fully-recomputed node
//     re-registers fresh dependencies during its own re-evaluation).
//  3. otherwise union rows into the node's finite set; if nothing new
//     was added, the task stops.
//
// Propagation then pushes (dependent, relation.GetAffectedRows(rows))
// for every edge reading node. Edges without a relation are skipped:
// no relation means no propagation, never an error. Unknown and leaf
// nodes simply have zero dependents.
//
// Invalidate never fails; duplicate edges contribute nothing extra
// under the merge rule.
func (g *Graph) Invalidate(dirtyNode Node, dirtyRows *rowset.Set, recompute RecomputeMap, includeSelf bool) {
	work := []task{{node: dirtyNode, rows: dirtyRows}}

	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]

		if includeSelf {
			cur := recompute[t.node]
			if cur.IsAll() {
				// Already maximal, no new work possible.
				continue
			}
			if t.rows.IsAll() {
				if cur == nil {
					cur = rowset.New()
					recompute[t.node] = cur
				}
				cur.SetAll()
				// A full recompute starts from an empty dependency
				// set, so the node's own outgoing edges must go now.
				g.ClearDependencies(t.node)
			} else {
				if cur == nil {
					cur = rowset.New()
					recompute[t.node] = cur
				}
				if !cur.UnionInPlace(t.rows) {
					// Nothing grew for this node; re-propagating
					// would only redo work already done.
					continue
				}
			}
		}
		includeSelf = true

		// Snapshot the dependents after the merge step: edges dropped
		// by ClearDependencies above (self-edges included) must not
		// propagate.
		for _, id := range g.EdgesForIn(t.node) {
			rel := g.relations[id]
			if rel == nil {
				continue
			}
			affected := rel.GetAffectedRows(t.rows)
			work = append(work, task{node: g.edges[id].out, rows: affected})
		}
	}

	slog.Debug("invalidation pass finished",
		"dirty", dirtyNode.String(),
		"rows", dirtyRows.String(),
		"nodes", len(recompute),
	)
}
