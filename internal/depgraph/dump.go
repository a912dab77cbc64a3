package depgraph

import (
	"fmt"
	"sort"
)

// EdgeDump is one edge in diagnostic output.
type EdgeDump struct {
	ID       EdgeID `json:"id"`
	Out      string `json:"out"`
	In       string `json:"in"`
	Relation string `json:"relation"`
}

// Dump enumerates all live edges for diagnostics. Output is sorted by
// edge id so goldens stay stable, but no ordering or format stability
// is guaranteed to callers.
func (g *Graph) Dump() []EdgeDump {
	out := make([]EdgeDump, 0, len(g.edges))
	for id, e := range g.edges {
		out = append(out, EdgeDump{
			ID:       id,
			Out:      e.out.String(),
			In:       e.in.String(),
			Relation: relationLabel(g.relations[id]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// relationLabel names a relation for dumps. Relations may implement
// fmt.Stringer; anything else falls back to its Go type.
func relationLabel(rel Relation) string {
	switch r := rel.(type) {
	case nil:
		return "none"
	case fmt.Stringer:
		return r.String()
	default:
		return fmt.Sprintf("%T", rel)
	}
}
