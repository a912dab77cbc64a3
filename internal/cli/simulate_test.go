package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSimulateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewSimulateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSimulateRawEdit(t *testing.T) {
	out, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.price", "--rows", "5", "--include-self=false")
	require.NoError(t, err)

	// price {5} -> total {5} (identity), total -> revenue ALL (full).
	assert.Contains(t, out, "Orders.total {5}")
	assert.Contains(t, out, "Summary.revenue *")
	assert.NotContains(t, out, "Orders.price {5}")
	assert.Contains(t, out, "2 column(s) to recompute")
}

func TestSimulateFormulaEditAll(t *testing.T) {
	out, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.total", "--all")
	require.NoError(t, err)

	assert.Contains(t, out, "Orders.total *")
	assert.Contains(t, out, "Summary.revenue *")
}

func TestSimulateJSON(t *testing.T) {
	out, err := runSimulateCmd(t, "json",
		writeDocDir(t), "--node", "Orders.price", "--rows", "5", "--include-self=false")
	require.NoError(t, err)

	assert.Contains(t, out, `"Orders.total": [`)
	assert.Contains(t, out, `"Summary.revenue": "*"`)
}

func TestSimulateBadNode(t *testing.T) {
	_, err := runSimulateCmd(t, "text", writeDocDir(t), "--node", "nodot", "--rows", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "expected table.column")
}

func TestSimulateRowsAndAllConflict(t *testing.T) {
	_, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.price", "--rows", "1", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestSimulateBadRowID(t *testing.T) {
	_, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.price", "--rows", "1,x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid row id "x"`)
}

func TestSimulateJournalThenTrace(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "passes.db")

	_, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.price", "--rows", "5",
		"--include-self=false", "--journal", journal)
	require.NoError(t, err)

	// List the journal.
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	traceCmd := NewTraceCommand(rootOpts)
	traceCmd.SetOut(buf)
	traceCmd.SetArgs([]string{"--db", journal})
	require.NoError(t, traceCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Orders.price [5]")
	assert.Contains(t, out, "include_self=false")
	assert.Contains(t, out, "1 pass(es)")
}

func TestTraceUnknownToken(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "passes.db")

	_, err := runSimulateCmd(t, "text",
		writeDocDir(t), "--node", "Orders.price", "--rows", "5", "--journal", journal)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	traceCmd := NewTraceCommand(rootOpts)
	traceCmd.SetOut(buf)
	traceCmd.SetArgs([]string{"--db", journal, "ghost-token"})

	err = traceCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass not found")
}
