package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const ordersDoc = `
package doc

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

// writeDocDir writes a valid document catalog into a temp directory.
func writeDocDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "doc.cue"), []byte(ordersDoc), 0o644)
	require.NoError(t, err)
	return dir
}

// writeBadDocDir writes a catalog whose read targets a missing column.
func writeBadDocDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bad := `
package doc

table: Orders: {
	column: total: {
		type:    "int"
		formula: true
		reads: [{table: "Orders", column: "ghost", relation: "identity"}]
	}
}
`
	err := os.WriteFile(filepath.Join(dir, "doc.cue"), []byte(bad), 0o644)
	require.NoError(t, err)
	return dir
}
