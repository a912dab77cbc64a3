package harness

import (
	"fmt"

	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/relation"
	"github.com/rowgraph/rowgraph/internal/rowset"
)

// Result is the final state after all scenario events ran.
type Result struct {
	Recompute depgraph.RecomputeMap
	Graph     *depgraph.Graph
}

// BuildGraph constructs the dependency graph a scenario declares,
// seeding reference links where given.
func BuildGraph(s *Scenario) (*depgraph.Graph, error) {
	g := depgraph.New()

	for i, decl := range s.Graph {
		rel := relation.New(relation.Kind(decl.Relation))
		if rel == nil {
			return nil, fmt.Errorf("graph[%d]: unknown relation kind %q", i, decl.Relation)
		}
		if ref, ok := rel.(*relation.Reference); ok {
			for _, link := range decl.Links {
				ref.AddReference(link.OutRow, link.InRow)
			}
		}

		out := depgraph.NewNode(decl.Out.Table, decl.Out.Column)
		in := depgraph.NewNode(decl.In.Table, decl.In.Column)
		if _, err := g.AddEdge(out, in, rel); err != nil {
			return nil, fmt.Errorf("graph[%d]: %w", i, err)
		}
	}

	return g, nil
}

// Run builds the scenario's graph and applies every event into one
// shared recompute map, then returns the accumulated state. Assertions
// are checked separately via Check.
func Run(s *Scenario) (*Result, error) {
	g, err := BuildGraph(s)
	if err != nil {
		return nil, err
	}

	recompute := depgraph.NewRecomputeMap()
	for _, event := range s.Events {
		node := depgraph.NewNode(event.Node.Table, event.Node.Column)

		var rows *rowset.Set
		if event.All {
			rows = rowset.All()
		} else {
			rows = rowset.FromSlice(event.Rows)
		}

		includeSelf := true
		if event.IncludeSelf != nil {
			includeSelf = *event.IncludeSelf
		}

		g.Invalidate(node, rows, recompute, includeSelf)
	}

	return &Result{Recompute: recompute, Graph: g}, nil
}
