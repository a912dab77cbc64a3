// Package relation provides the stock Relation implementations used by
// the document engine when registering dependency edges.
//
// A relation maps changed rows of the read column (the in node) to the
// rows of the formula column (the out node) that must be recomputed.
// All implementations honor the depgraph.Relation contract:
// GetAffectedRows is pure and monotonic.
//
// Identity and Full are stateless; Reference carries per-row linkage
// that the graph resets through ResetRows/ResetAll.
package relation

import (
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// Kind names a relation implementation in document specs and dumps.
type Kind string

const (
	// KindIdentity maps each input row to the same output row.
	KindIdentity Kind = "identity"
	// KindFull maps any change to every output row.
	KindFull Kind = "full"
	// KindReference maps input rows through per-row reference links.
	KindReference Kind = "reference"
)

// ValidKinds lists the relation kinds accepted by document specs.
var ValidKinds = map[Kind]bool{
	KindIdentity:  true,
	KindFull:      true,
	KindReference: true,
}

// Identity is the same-table row-to-row relation: row N of the formula
// column reads row N of the source column. Stateless; resets are
// no-ops.
type Identity struct{}

// NewIdentity creates an identity relation.
func NewIdentity() *Identity { return &Identity{} }

// GetAffectedRows returns a copy of the input rows.
func (r *Identity) GetAffectedRows(input *rowset.Set) *rowset.Set {
	return input.Clone()
}

// ResetRows is a no-op; identity carries no per-row state.
func (r *Identity) ResetRows(rows *rowset.Set) {}

// ResetAll is a no-op.
func (r *Identity) ResetAll() {}

func (r *Identity) String() string { return string(KindIdentity) }

// Full is the whole-column relation used for cross-table aggregates:
// any change to the source column affects every row of the formula
// column. Stateless; resets are no-ops.
type Full struct{}

// NewFull creates a full relation.
func NewFull() *Full { return &Full{} }

// GetAffectedRows always returns ALL.
func (r *Full) GetAffectedRows(input *rowset.Set) *rowset.Set {
	return rowset.All()
}

// ResetRows is a no-op; full carries no per-row state.
func (r *Full) ResetRows(rows *rowset.Set) {}

// ResetAll is a no-op.
func (r *Full) ResetAll() {}

func (r *Full) String() string { return string(KindFull) }
