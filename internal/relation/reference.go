package relation

import (
	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// Reference is the per-row lookup relation: each formula row reads one
// referenced row of the source column, as observed during evaluation
// (e.g. a reference-column lookup). It keeps a reverse mapping from
// referenced row to the set of referring rows, so a change to source
// row N affects exactly the formula rows that looked N up.
//
// The evaluation engine records links with AddReference while the
// formula runs. The graph clears links through ResetRows (before a
// partial recompute of the referring rows) and ResetAll (when the edge
// is destroyed).
type Reference struct {
	// refs maps referenced (in) row -> set of referring (out) rows.
	refs map[int64]map[int64]struct{}
	// back maps referring (out) row -> referenced (in) rows, for
	// row-scoped resets.
	back map[int64]map[int64]struct{}
}

// NewReference creates an empty reference relation.
func NewReference() *Reference {
	return &Reference{
		refs: make(map[int64]map[int64]struct{}),
		back: make(map[int64]map[int64]struct{}),
	}
}

// AddReference records that formula row outRow read source row inRow.
func (r *Reference) AddReference(outRow, inRow int64) {
	if r.refs[inRow] == nil {
		r.refs[inRow] = make(map[int64]struct{})
	}
	r.refs[inRow][outRow] = struct{}{}

	if r.back[outRow] == nil {
		r.back[outRow] = make(map[int64]struct{})
	}
	r.back[outRow][inRow] = struct{}{}
}

// GetAffectedRows returns the referring rows of every changed source
// row. ALL in yields ALL out (every link could be affected).
func (r *Reference) GetAffectedRows(input *rowset.Set) *rowset.Set {
	if input.IsAll() {
		return rowset.All()
	}
	out := rowset.New()
	for _, inRow := range input.Sorted() {
		for outRow := range r.refs[inRow] {
			out.Add(outRow)
		}
	}
	return out
}

// ResetRows drops the links of referring rows that are about to be
// recomputed; re-evaluation records fresh links. ALL clears everything.
func (r *Reference) ResetRows(rows *rowset.Set) {
	if rows.IsAll() {
		r.ResetAll()
		return
	}
	for _, outRow := range rows.Sorted() {
		for inRow := range r.back[outRow] {
			delete(r.refs[inRow], outRow)
			if len(r.refs[inRow]) == 0 {
				delete(r.refs, inRow)
			}
		}
		delete(r.back, outRow)
	}
}

// ResetAll clears every link. Called when the edge is destroyed.
func (r *Reference) ResetAll() {
	r.refs = make(map[int64]map[int64]struct{})
	r.back = make(map[int64]map[int64]struct{})
}

// LinkCount returns the number of live (outRow, inRow) links.
// Used for testing and introspection.
func (r *Reference) LinkCount() int {
	n := 0
	for _, outs := range r.refs {
		n += len(outs)
	}
	return n
}

func (r *Reference) String() string { return string(KindReference) }

// New builds a relation of the given kind, or nil if the kind is
// unknown. Document spec validation rejects unknown kinds before this
// point; the nil return is the defensive path.
func New(kind Kind) depgraph.Relation {
	switch kind {
	case KindIdentity:
		return NewIdentity()
	case KindFull:
		return NewFull()
	case KindReference:
		return NewReference()
	default:
		return nil
	}
}
