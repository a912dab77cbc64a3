package store

import (
	"fmt"
	"sort"

	"github.com/rowgraph/rowgraph/internal/canon"
	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// Pass is one recorded invalidation pass: the dirty seed and the
// recompute map it produced.
type Pass struct {
	Token       string      // UUIDv7 pass token
	Source      string      // dirty node as "table.column"
	SourceTable string      // dirty node table id
	SourceCol   string      // dirty node column id
	Rows        string      // canonical dirty row set
	IncludeSelf bool        // whether the seed was merged
	Seq         int64       // logical clock stamp
	Entries     []PassEntry // recompute map, ordered by node
}

// PassEntry is one node of a pass's recompute map.
type PassEntry struct {
	NodeTable string
	NodeCol   string
	Rows      string // canonical row set
}

// EncodeRows renders a row set canonically for journal storage:
// `"*"` for ALL, otherwise a sorted JSON id array.
func EncodeRows(rows *rowset.Set) (string, error) {
	raw, err := canon.Marshal(rows.Canonical())
	if err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	return string(raw), nil
}

// NewPass builds a journal record from an invalidation pass result.
// Entries are emitted in the recompute map's canonical key order.
func NewPass(token string, source depgraph.Node, rows *rowset.Set, includeSelf bool, seq int64, m depgraph.RecomputeMap) (Pass, error) {
	encoded, err := EncodeRows(rows)
	if err != nil {
		return Pass{}, err
	}

	p := Pass{
		Token:       token,
		Source:      source.String(),
		SourceTable: source.TableID,
		SourceCol:   source.ColID,
		Rows:        encoded,
		IncludeSelf: includeSelf,
		Seq:         seq,
	}

	for _, node := range sortedNodes(m) {
		rowsJSON, err := EncodeRows(m.Rows(node))
		if err != nil {
			return Pass{}, err
		}
		p.Entries = append(p.Entries, PassEntry{
			NodeTable: node.TableID,
			NodeCol:   node.ColID,
			Rows:      rowsJSON,
		})
	}

	return p, nil
}

// sortedNodes returns the map's nodes ordered by (table, column) so
// journal entries are deterministic.
func sortedNodes(m depgraph.RecomputeMap) []depgraph.Node {
	nodes := make([]depgraph.Node, 0, len(m))
	for n := range m {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodeLess(nodes[i], nodes[j]) })
	return nodes
}

func nodeLess(a, b depgraph.Node) bool {
	if a.TableID != b.TableID {
		return a.TableID < b.TableID
	}
	return a.ColID < b.ColID
}
