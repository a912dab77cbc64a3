package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowgraph/rowgraph/internal/schema"
)

func readOf(table, column, kind string) schema.ReadSpec {
	return schema.ReadSpec{Table: table, Column: column, Relation: kind}
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	spec := &schema.DocumentSpec{Tables: []schema.TableSpec{
		{Name: "t", Columns: []schema.ColumnSpec{
			{Name: "a", Type: "int"},
			{Name: "b", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "a", "identity")}},
			{Name: "c", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "b", "identity")}},
		}},
	}}

	warnings := AnalyzeCycles(spec)
	assert.Empty(t, warnings)
}

func TestAnalyzeCycles_SelfRead(t *testing.T) {
	spec := &schema.DocumentSpec{Tables: []schema.TableSpec{
		{Name: "t", Columns: []schema.ColumnSpec{
			{Name: "prev", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "prev", "identity")}},
		}},
	}}

	warnings := AnalyzeCycles(spec)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"t.prev", "t.prev"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "reads itself")
}

func TestAnalyzeCycles_TwoColumnCycle(t *testing.T) {
	spec := &schema.DocumentSpec{Tables: []schema.TableSpec{
		{Name: "t", Columns: []schema.ColumnSpec{
			{Name: "a", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "b", "identity")}},
			{Name: "b", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "a", "identity")}},
		}},
	}}

	warnings := AnalyzeCycles(spec)
	require.Len(t, warnings, 1)

	w := warnings[0]
	assert.Contains(t, w.Message, "formula cycle detected")
	assert.Contains(t, w.Path, "t.a")
	assert.Contains(t, w.Path, "t.b")
	// A cycle path returns to its start.
	assert.Equal(t, w.Path[0], w.Path[len(w.Path)-1])
}

func TestAnalyzeCycles_SeparateCycles(t *testing.T) {
	spec := &schema.DocumentSpec{Tables: []schema.TableSpec{
		{Name: "t", Columns: []schema.ColumnSpec{
			{Name: "a", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "b", "identity")}},
			{Name: "b", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "a", "identity")}},
			{Name: "loop", Type: "int", Formula: true, Reads: []schema.ReadSpec{readOf("t", "loop", "identity")}},
		}},
	}}

	warnings := AnalyzeCycles(spec)
	assert.Len(t, warnings, 2)
}

func TestAnalyzeCycles_EmptyCatalog(t *testing.T) {
	warnings := AnalyzeCycles(&schema.DocumentSpec{})
	assert.Empty(t, warnings)
}
