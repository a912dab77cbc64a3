package depgraph

import (
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// RecomputeMap accumulates, over one invalidation pass, the nodes that
// need recomputation and which of their rows. Entries only grow
// (row-set union) or get promoted to ALL, never shrink, within a pass;
// once a node sits at ALL it is absorbing for the rest of the pass.
type RecomputeMap map[Node]*rowset.Set

// NewRecomputeMap creates an empty accumulator.
func NewRecomputeMap() RecomputeMap {
	return make(RecomputeMap)
}

// Rows returns the accumulated row set for node, or nil if the node is
// not scheduled for recomputation.
func (m RecomputeMap) Rows(node Node) *rowset.Set {
	return m[node]
}

// Canonical returns the map keyed by "table.column" with canonical row
// sets ("*" or sorted id arrays), for dumps and golden comparison.
func (m RecomputeMap) Canonical() map[string]any {
	out := make(map[string]any, len(m))
	for node, rows := range m {
		out[node.String()] = rows.Canonical()
	}
	return out
}
