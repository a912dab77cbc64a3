package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowgraph/rowgraph/internal/canon"
	"github.com/rowgraph/rowgraph/internal/compiler"
	"github.com/rowgraph/rowgraph/internal/depgraph"
	"github.com/rowgraph/rowgraph/internal/engine"
	"github.com/rowgraph/rowgraph/internal/rowset"
	"github.com/rowgraph/rowgraph/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Node        string
	Rows        string
	All         bool
	IncludeSelf bool
	Journal     string
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <document-dir>",
		Short: "Simulate an invalidation pass over a catalog's graph",
		Long: `Build the dependency graph from a document catalog, mark the given
node dirty and report every column that would need recomputation, at
row granularity.

--include-self=false models a raw data edit: the edited column itself
is never recomputed, only its dependents are. With --journal the pass
is recorded in a SQLite journal for later inspection via trace.

Examples:
  rowgraph simulate ./doc --node Orders.price --rows 5 --include-self=false
  rowgraph simulate ./doc --node Orders.total --all
  rowgraph simulate ./doc --node Orders.price --rows 1,2 --journal ./passes.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Node, "node", "", "dirty node as table.column (required)")
	_ = cmd.MarkFlagRequired("node")
	cmd.Flags().StringVar(&opts.Rows, "rows", "", "comma-separated dirty row ids")
	cmd.Flags().BoolVar(&opts.All, "all", false, "mark every row dirty")
	cmd.Flags().BoolVar(&opts.IncludeSelf, "include-self", true, "schedule the dirty node itself")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the pass in this SQLite journal")

	return cmd
}

func runSimulate(opts *SimulateOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	node, err := parseNode(opts.Node)
	if err != nil {
		_ = formatter.Error(ErrCodeBadNode, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	rows, err := parseRows(opts.Rows, opts.All)
	if err != nil {
		_ = formatter.Error(ErrCodeBadRows, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	doc, err := LoadDocument(dir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	g, err := compiler.BuildGraph(doc.Spec)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidSpec, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("graph build failed: %v", err))
	}

	session, cleanup, err := newSession(cmd.Context(), g, opts.Journal)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer cleanup()

	pass, err := session.Apply(cmd.Context(), node, rows, opts.IncludeSelf)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to journal pass", err)
	}
	if pass.Token != "" {
		formatter.VerboseLog("Journaled pass %s to %s", pass.Token, opts.Journal)
	}

	return outputRecompute(formatter, cmd, pass.Recompute)
}

// newSession wraps the graph in a single-writer session, attaching the
// SQLite journal when requested. The clock resumes from the journal's
// existing pass count so seq values stay dense across invocations.
func newSession(ctx context.Context, g *depgraph.Graph, journal string) (*engine.Session, func(), error) {
	if journal == "" {
		return engine.NewSession(g), func() {}, nil
	}

	st, err := store.Open(journal)
	if err != nil {
		return nil, nil, err
	}
	count, err := st.Count(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	session := engine.NewSession(g,
		engine.WithJournal(st),
		engine.WithClock(engine.NewClockAt(int64(count))),
	)
	return session, func() { st.Close() }, nil
}

func outputRecompute(formatter *OutputFormatter, cmd *cobra.Command, recompute depgraph.RecomputeMap) error {
	if formatter.Format == "json" {
		data, err := canon.MarshalIndent(map[string]any{
			"recompute": recompute.Canonical(),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode recompute map", err)
		}
		data = append(data, '\n')
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	w := cmd.OutOrStdout()
	if len(recompute) == 0 {
		fmt.Fprintln(w, "(nothing to recompute)")
		return nil
	}

	keys := make([]string, 0, len(recompute))
	byKey := make(map[string]string, len(recompute))
	for node, rows := range recompute {
		keys = append(keys, node.String())
		byKey[node.String()] = rows.String()
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%s %s\n", k, byKey[k])
	}
	fmt.Fprintf(w, "%d column(s) to recompute\n", len(keys))
	return nil
}

// parseNode splits a "table.column" argument.
func parseNode(s string) (depgraph.Node, error) {
	table, column, ok := strings.Cut(s, ".")
	if !ok || table == "" || column == "" {
		return depgraph.Node{}, fmt.Errorf("invalid node %q: expected table.column", s)
	}
	return depgraph.NewNode(table, column), nil
}

// parseRows parses a comma-separated row id list, or ALL.
func parseRows(s string, all bool) (*rowset.Set, error) {
	if all {
		if s != "" {
			return nil, fmt.Errorf("--rows and --all are mutually exclusive")
		}
		return rowset.All(), nil
	}
	if s == "" {
		return nil, fmt.Errorf("either --rows or --all is required")
	}

	set := rowset.New()
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid row id %q", part)
		}
		set.Add(id)
	}
	return set, nil
}
