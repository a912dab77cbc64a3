package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/rowset"
)

const ordersCUE = `
table: Orders: {
	column: price: {type: "int"}
	column: quantity: {type: "int"}
	column: total: {
		type:    "int"
		formula: true
		reads: [
			{table: "Orders", column: "price", relation: "identity"},
			{table: "Orders", column: "quantity", relation: "identity"},
		]
	}
}
table: Summary: {
	column: revenue: {
		type:    "int"
		formula: true
		reads: [{table: "Orders", column: "total", relation: "full"}]
	}
}
`

func compile(t *testing.T, src string) (*depgraph.Graph, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	spec, err := CompileDocument(v)
	if err != nil {
		return nil, err
	}
	return BuildGraph(spec)
}

func TestCompileDocument_OK(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(ordersCUE)
	require.NoError(t, v.Err())

	spec, err := CompileDocument(v)
	require.NoError(t, err)

	require.Len(t, spec.Tables, 2)
	assert.Equal(t, "Orders", spec.Tables[0].Name)
	require.Len(t, spec.Tables[0].Columns, 3)

	total := spec.Tables[0].Columns[2]
	assert.Equal(t, "total", total.Name)
	assert.True(t, total.Formula)
	require.Len(t, total.Reads, 2)
	assert.Equal(t, "price", total.Reads[0].Column)
	assert.Equal(t, "identity", total.Reads[0].Relation)
}

func TestCompileDocument_MissingTables(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`other: 1`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "table", ce.Field)
}

func TestCompileDocument_MissingColumns(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`table: Orders: {note: "empty"}`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Field, "table.Orders.column")
}

func TestCompileDocument_ReadMissingRelation(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
table: T: {
	column: a: {type: "int"}
	column: b: {
		formula: true
		reads: [{table: "T", column: "a"}]
	}
}
`)
	require.NoError(t, v.Err())

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation is required")
}

func TestBuildGraph_EndToEnd(t *testing.T) {
	g, err := compile(t, ordersCUE)
	require.NoError(t, err)

	dump := g.Dump()
	require.Len(t, dump, 3, "one edge per declared read")

	// Editing Orders.price row 5 must schedule Orders.total row 5 and,
	// through the full relation, all of Summary.revenue.
	m := depgraph.NewRecomputeMap()
	g.Invalidate(depgraph.NewNode("Orders", "price"), rowset.Of(5), m, false)

	require.Len(t, m, 2)
	assert.True(t, m.Rows(depgraph.NewNode("Orders", "total")).Equal(rowset.Of(5)))
	assert.True(t, m.Rows(depgraph.NewNode("Summary", "revenue")).IsAll())
}

func TestBuildGraph_RejectsInvalidSpec(t *testing.T) {
	_, err := compile(t, `
table: T: {
	column: a: {type: "int"}
	column: b: {
		formula: true
		reads: [{table: "Ghost", column: "a", relation: "identity"}]
	}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "Ghost"`)
}
