package depgraph

import (
	"golang.org/x/text/unicode/norm"

	"github.com/rowgraph/rowgraph/internal/rowset"
)

// Node identifies a document column as (table id, column id).
// Nodes are immutable values with structural equality and are used
// directly as map keys.
type Node struct {
	TableID string
	ColID   string
}

// NewNode builds a Node from table and column ids. Identifiers are
// NFC-normalized so that visually identical names compare equal
// regardless of how the host composed them.
func NewNode(tableID, colID string) Node {
	return Node{
		TableID: norm.NFC.String(tableID),
		ColID:   norm.NFC.String(colID),
	}
}

// String renders the node as "table.column" for logs and dumps.
func (n Node) String() string {
	return n.TableID + "." + n.ColID
}

// valid reports whether both identifiers are non-empty. Malformed
// nodes fail fast at edge insertion, the boundary where they enter
// the graph.
func (n Node) valid() bool {
	return n.TableID != "" && n.ColID != ""
}

// Relation is the per-edge capability mapping changed input rows to
// affected output rows, and managing any per-row cached linkage.
//
// REQUIRED CONTRACT (termination depends on it):
//   - GetAffectedRows is pure: it must not mutate the relation, the
//     graph, or its input, and must return a set the caller may read
//     but not rely on mutating.
//   - GetAffectedRows is monotonic: a larger input set never yields a
//     smaller output set. ALL in may yield ALL out.
//
// The contract is documented, not enforced; a relation that violates
// it can make invalidation loop or under-report.
type Relation interface {
	// GetAffectedRows maps changed input rows to affected output rows.
	GetAffectedRows(input *rowset.Set) *rowset.Set

	// ResetRows clears per-row state for output rows that are about to
	// be recomputed. The edge stays live.
	ResetRows(rows *rowset.Set)

	// ResetAll clears all state. Called exactly once when the edge is
	// destroyed.
	ResetAll()
}
