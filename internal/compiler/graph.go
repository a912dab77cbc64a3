package compiler

import (
	"fmt"

	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/relation"
	"github.com/rowgraph/rowgraph/internal/schema"
)

// BuildGraph validates a document spec and registers one dependency
// edge per declared read, with a fresh relation of the declared kind.
//
// This is the catalog-driven bootstrap path: when a document is
// loaded, declared reads seed the graph; during live evaluation the
// evaluation engine re-registers edges from observed reads instead.
func BuildGraph(spec *schema.DocumentSpec) (*depgraph.Graph, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document spec: %w", err)
	}

	g := depgraph.New()
	for _, table := range spec.Tables {
		for _, col := range table.Columns {
			out := depgraph.NewNode(table.Name, col.Name)
			for _, read := range col.Reads {
				in := depgraph.NewNode(read.Table, read.Column)
				rel := relation.New(relation.Kind(read.Relation))
				if _, err := g.AddEdge(out, in, rel); err != nil {
					return nil, fmt.Errorf("register read %s -> %s: %w", out, in, err)
				}
			}
		}
	}
	return g, nil
}
