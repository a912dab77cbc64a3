package depgraph

import (
	"log/slog"

	"github.com/rowgraph/rowgraph/internal/rowset"
)

// EdgeID identifies an edge for its whole lifetime. Ids are an
// incrementing counter; they are stable until the edge is removed and
// never reused within one graph.
type EdgeID int64

// edge is the directed dependency record: out's formula reads in.
type edge struct {
	out Node
	in  Node
}

// Graph is the dependency graph for all data in one document.
//
// It combines the edge store (dual hash multimaps), the relation
// registry (one relation per live edge) and the invalidation engine
// (see invalidate.go).
//
// NOT thread-safe. All mutating operations assume exclusive access for
// their duration; the surrounding document engine serializes calls.
type Graph struct {
	nextEdge EdgeID

	// Edge store: the same edge ids indexed by both endpoints.
	edges map[EdgeID]edge
	byOut map[Node][]EdgeID
	byIn  map[Node][]EdgeID

	// Relation registry: 1:1 with live edges.
	relations map[EdgeID]Relation
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		edges:     make(map[EdgeID]edge),
		byOut:     make(map[Node][]EdgeID),
		byIn:      make(map[Node][]EdgeID),
		relations: make(map[EdgeID]Relation),
	}
}

// AddEdge records that out's formula reads in, with rel capturing the
// observed row correspondence. A change to in will trigger a
// recomputation of out.
//
// Duplicate (out, in) edges are permitted and not deduplicated: each
// carries its own relation for a distinct row-mapping pattern, and the
// merge rule makes redundant edges idempotent during invalidation.
//
// Returns a NodeError if either endpoint has an empty table or column
// id. This is the fail-fast boundary for malformed identifiers.
func (g *Graph) AddEdge(out, in Node, rel Relation) (EdgeID, error) {
	if !out.valid() {
		return 0, newNodeError(out)
	}
	if !in.valid() {
		return 0, newNodeError(in)
	}

	g.nextEdge++
	id := g.nextEdge

	g.edges[id] = edge{out: out, in: in}
	g.byOut[out] = append(g.byOut[out], id)
	g.byIn[in] = append(g.byIn[in], id)
	if rel != nil {
		g.relations[id] = rel
	}

	slog.Debug("edge added",
		"edge", id,
		"out", out.String(),
		"in", in.String(),
	)

	return id, nil
}

// EdgesForOut returns the ids of node's own dependency edges (edges
// whose formula is node). The slice is a copy; ordering follows
// insertion but is not guaranteed.
func (g *Graph) EdgesForOut(node Node) []EdgeID {
	return append([]EdgeID(nil), g.byOut[node]...)
}

// EdgesForIn returns the ids of edges depending on node (edges whose
// formula reads node). The slice is a copy.
func (g *Graph) EdgesForIn(node Node) []EdgeID {
	return append([]EdgeID(nil), g.byIn[node]...)
}

// CountEdgesForIn returns how many edges read node, i.e. how many
// dependents it has (duplicates counted).
func (g *Graph) CountEdgesForIn(node Node) int {
	return len(g.byIn[node])
}

// Relation returns the relation registered for an edge, or nil if the
// edge is gone or never carried one. A nil relation means no
// propagation, by the error model, not a failure.
func (g *Graph) Relation(id EdgeID) Relation {
	return g.relations[id]
}

// ClearDependencies removes all of node's own outgoing dependency
// edges, releasing each relation via ResetAll exactly once before the
// edge is destroyed.
//
// Called before/after a full recompute of node and on node deletion:
// re-evaluating a formula re-registers fresh dependencies, so stale
// ones must not linger.
func (g *Graph) ClearDependencies(node Node) {
	ids := g.byOut[node]
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		e := g.edges[id]
		if rel, ok := g.relations[id]; ok {
			rel.ResetAll()
			delete(g.relations, id)
		}
		delete(g.edges, id)
		g.byIn[e.in] = removeID(g.byIn[e.in], id)
		if len(g.byIn[e.in]) == 0 {
			delete(g.byIn, e.in)
		}
	}
	delete(g.byOut, node)

	slog.Debug("dependencies cleared",
		"node", node.String(),
		"edges", len(ids),
	)
}

// ResetDependencies resets per-row relation state for rows of node
// that are about to be recomputed, without removing any edge. The
// formula's re-evaluation must not see stale per-row linkage for rows
// it is about to overwrite.
func (g *Graph) ResetDependencies(node Node, rows *rowset.Set) {
	for _, id := range g.byOut[node] {
		if rel, ok := g.relations[id]; ok {
			rel.ResetRows(rows)
		}
	}
}

// RemoveNodeIfUnused removes node's dependency edges if nothing
// depends on it, reporting whether the node is gone. If node has
// dependents the graph is left untouched and false is returned.
//
// Used bottom-up during column deletion to garbage-collect dangling
// dependency edges.
func (g *Graph) RemoveNodeIfUnused(node Node) bool {
	if len(g.byIn[node]) > 0 {
		return false
	}
	g.ClearDependencies(node)
	return true
}

// removeID deletes one occurrence of id from ids, preserving order of
// the rest.
func removeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
