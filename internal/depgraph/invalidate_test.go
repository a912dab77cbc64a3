package depgraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowgraph/rowgraph/internal/rowset"
)

// identityRelation forwards input rows unchanged without bookkeeping.
type identityRelation struct{}

func (identityRelation) GetAffectedRows(input *rowset.Set) *rowset.Set { return input.Clone() }
func (identityRelation) ResetRows(rows *rowset.Set)                    {}
func (identityRelation) ResetAll()                                     {}

func mustEdge(t *testing.T, g *Graph, out, in Node, rel Relation) EdgeID {
	t.Helper()
	id, err := g.AddEdge(out, in, rel)
	require.NoError(t, err)
	return id
}

func assertRows(t *testing.T, m RecomputeMap, n Node, want ...int64) {
	t.Helper()
	got := m.Rows(n)
	require.NotNil(t, got, "expected %s in recompute map", n)
	assert.True(t, got.Equal(rowset.Of(want...)),
		"node %s: got %s, want %s", n, got, rowset.Of(want...))
}

func TestInvalidate_Scenario_IdentityChain(t *testing.T) {
	// A=(t1,c1) depends on B=(t1,c2) via the identity relation.
	g := New()
	a, b := node("t1", "c1"), node("t1", "c2")
	mustEdge(t, g, a, b, identityRelation{})

	// Raw edit of rows {5} at B: B itself is raw data and is skipped,
	// A recomputes row 5.
	m := NewRecomputeMap()
	g.Invalidate(b, rowset.Of(5), m, false)

	require.Len(t, m, 1)
	assertRows(t, m, a, 5)
	assert.Nil(t, m.Rows(b), "raw seed must not be scheduled")
}

func TestInvalidate_Scenario_AllRowsClearsEdges(t *testing.T) {
	g := New()
	a, b := node("t1", "c1"), node("t1", "c2")
	mustEdge(t, g, a, b, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.All(), m, true)

	require.Len(t, m, 2)
	assert.True(t, m.Rows(b).IsAll())
	assert.True(t, m.Rows(a).IsAll())

	// B's own outgoing edges were cleared when B went ALL, and the
	// B→A edge was cleared when A went ALL (A is its out node).
	assert.Empty(t, g.EdgesForOut(a))
	assert.Empty(t, g.EdgesForOut(b))
	assert.Empty(t, g.Dump())
}

func TestInvalidate_Idempotent(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.Of(1, 2), m, false)
	assertRows(t, m, a, 1, 2)

	// Second call with an already-subsumed row set changes nothing.
	g.Invalidate(b, rowset.Of(1), m, false)
	require.Len(t, m, 1)
	assertRows(t, m, a, 1, 2)
}

func TestInvalidate_Absorption_AllIsSticky(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, allRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.Of(1), m, false)
	require.True(t, m.Rows(a).IsAll())

	// Further invalidations touching a leave it at ALL.
	g.Invalidate(a, rowset.Of(7), m, true)
	assert.True(t, m.Rows(a).IsAll())

	g.Invalidate(a, rowset.All(), m, true)
	assert.True(t, m.Rows(a).IsAll())
	require.Len(t, m, 1)
}

func TestInvalidate_CycleTerminates(t *testing.T) {
	// A→B and B→A: each reads the other. Must terminate.
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, identityRelation{})
	mustEdge(t, g, b, a, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(a, rowset.Of(5), m, true)

	assertRows(t, m, a, 5)
	assertRows(t, m, b, 5)
}

func TestInvalidate_CycleWithAllRowsTerminates(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, identityRelation{})
	mustEdge(t, g, b, a, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(a, rowset.All(), m, true)

	assert.True(t, m.Rows(a).IsAll())
	assert.True(t, m.Rows(b).IsAll())
	assert.Empty(t, g.Dump(), "both nodes went ALL, both dependency sets cleared")
}

func TestInvalidate_SelfEdgeTerminates(t *testing.T) {
	g := New()
	a := node("t1", "a")
	mustEdge(t, g, a, a, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(a, rowset.Of(3), m, true)
	assertRows(t, m, a, 3)
}

func TestInvalidate_DeepChainNoRecursion(t *testing.T) {
	// A chain far deeper than any sane goroutine stack would allow
	// with naive recursion plus per-frame allocations.
	g := New()
	const depth = 200_000
	for i := 0; i < depth; i++ {
		out := node("t", fmt.Sprintf("c%d", i+1))
		in := node("t", fmt.Sprintf("c%d", i))
		mustEdge(t, g, out, in, identityRelation{})
	}

	m := NewRecomputeMap()
	g.Invalidate(node("t", "c0"), rowset.Of(1), m, false)

	assert.Len(t, m, depth)
	assertRows(t, m, node("t", fmt.Sprintf("c%d", depth)), 1)
}

func TestInvalidate_UnknownNodeIsNoop(t *testing.T) {
	g := New()
	m := NewRecomputeMap()

	g.Invalidate(node("ghost", "col"), rowset.Of(1), m, false)
	assert.Empty(t, m, "raw seed with no dependents schedules nothing")

	g.Invalidate(node("ghost", "col"), rowset.Of(1), m, true)
	assertRows(t, m, node("ghost", "col"), 1)
}

func TestInvalidate_MissingRelationSkipsPropagation(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, nil)

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.Of(5), m, false)
	assert.Empty(t, m, "edge without a relation must not propagate")
}

func TestInvalidate_DuplicateEdgesIdempotent(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, identityRelation{})
	mustEdge(t, g, a, b, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.Of(5), m, false)

	require.Len(t, m, 1)
	assertRows(t, m, a, 5)
}

func TestInvalidate_Diamond_UnionsAtJoin(t *testing.T) {
	// raw → left, raw → right, left → join, right → join, where the
	// two middle relations shift rows differently.
	g := New()
	raw := node("t", "raw")
	left, right, join := node("t", "left"), node("t", "right"), node("t", "join")

	mustEdge(t, g, left, raw, identityRelation{})
	mustEdge(t, g, right, raw, shiftRelation{by: 10})
	mustEdge(t, g, join, left, identityRelation{})
	mustEdge(t, g, join, right, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(raw, rowset.Of(1, 2), m, false)

	assertRows(t, m, left, 1, 2)
	assertRows(t, m, right, 11, 12)
	assertRows(t, m, join, 1, 2, 11, 12)
}

func TestInvalidate_AllPromotionDropsOnlyOwnEdges(t *testing.T) {
	// B goes ALL: B's own dependencies are dropped, but the edge from
	// A reading B must survive long enough to propagate ALL to A.
	g := New()
	a, b, src := node("t", "a"), node("t", "b"), node("t", "src")
	mustEdge(t, g, b, src, identityRelation{})
	mustEdge(t, g, a, b, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.All(), m, true)

	assert.True(t, m.Rows(b).IsAll())
	assert.True(t, m.Rows(a).IsAll())
	assert.Empty(t, g.Dump(), "a also went ALL, so a's dependency on b was dropped too")
}

func TestInvalidate_EmptyRowSetSchedulesWithoutPropagation(t *testing.T) {
	g := New()
	a, b := node("t1", "a"), node("t1", "b")
	mustEdge(t, g, a, b, identityRelation{})

	m := NewRecomputeMap()
	g.Invalidate(b, rowset.New(), m, true)

	// The seed gets an (empty) entry; nothing grew, so no propagation.
	require.NotNil(t, m.Rows(b))
	assert.True(t, m.Rows(b).IsEmpty())
	assert.Nil(t, m.Rows(a))
}

// shiftRelation maps row n to n+by; monotonic and pure.
type shiftRelation struct{ by int64 }

func (r shiftRelation) GetAffectedRows(input *rowset.Set) *rowset.Set {
	if input.IsAll() {
		return rowset.All()
	}
	out := rowset.New()
	for _, id := range input.Sorted() {
		out.Add(id + r.by)
	}
	return out
}

func (shiftRelation) ResetRows(rows *rowset.Set) {}
func (shiftRelation) ResetAll()                  {}

func TestRecomputeMap_Canonical(t *testing.T) {
	m := NewRecomputeMap()
	m[node("t1", "a")] = rowset.Of(2, 1)
	m[node("t1", "b")] = rowset.All()

	got := m.Canonical()
	assert.Equal(t, map[string]any{
		"t1.a": []any{int64(1), int64(2)},
		"t1.b": "*",
	}, got)
}
