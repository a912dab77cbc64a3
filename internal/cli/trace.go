package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowgraph/rowgraph/internal/canon"
	"github.com/rowgraph/rowgraph/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [pass-token]",
		Short: "Inspect journaled invalidation passes",
		Long: `Read the invalidation journal written by simulate --journal.

Without a token, lists every recorded pass in logical-clock order.
With a token, shows that pass's dirty seed and full recompute map.

Examples:
  rowgraph trace --db ./passes.db
  rowgraph trace --db ./passes.db 0198ec5e-1db3-7cc1-8e7a-3f3e6a1fd6a2
  rowgraph trace --db ./passes.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runTracePass(opts, args[0], cmd)
			}
			return runTraceList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTraceList(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	passes, err := st.ListPasses(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list passes", err)
	}

	if opts.Format == "json" {
		items := make([]any, 0, len(passes))
		for _, p := range passes {
			items = append(items, map[string]any{
				"token":        p.Token,
				"source":       p.Source,
				"rows":         p.Rows,
				"include_self": p.IncludeSelf,
				"seq":          p.Seq,
			})
		}
		data, err := canon.MarshalIndent(map[string]any{"passes": items})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode passes", err)
		}
		data = append(data, '\n')
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	w := cmd.OutOrStdout()
	if len(passes) == 0 {
		fmt.Fprintln(w, "(no passes journaled)")
		return nil
	}
	for _, p := range passes {
		fmt.Fprintf(w, "[%d] %s  %s %s  include_self=%t\n",
			p.Seq, p.Token, p.Source, p.Rows, p.IncludeSelf)
	}
	fmt.Fprintf(w, "%d pass(es)\n", len(passes))
	return nil
}

func runTracePass(opts *TraceOptions, token string, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	p, err := st.ReadPass(cmd.Context(), token)
	if errors.Is(err, store.ErrPassNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("pass not found: %s", token))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read pass", err)
	}

	if opts.Format == "json" {
		entries := make([]any, 0, len(p.Entries))
		for _, e := range p.Entries {
			entries = append(entries, map[string]any{
				"node": e.NodeTable + "." + e.NodeCol,
				"rows": e.Rows,
			})
		}
		data, err := canon.MarshalIndent(map[string]any{
			"token":        p.Token,
			"source":       p.Source,
			"rows":         p.Rows,
			"include_self": p.IncludeSelf,
			"seq":          p.Seq,
			"recompute":    entries,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode pass", err)
		}
		data = append(data, '\n')
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Pass %s\n", p.Token)
	fmt.Fprintf(w, "Seq:          %d\n", p.Seq)
	fmt.Fprintf(w, "Dirty:        %s %s\n", p.Source, p.Rows)
	fmt.Fprintf(w, "Include self: %t\n", p.IncludeSelf)
	fmt.Fprintln(w)

	if len(p.Entries) == 0 {
		fmt.Fprintln(w, "(nothing to recompute)")
		return nil
	}
	fmt.Fprintln(w, "Recompute:")
	for _, e := range p.Entries {
		fmt.Fprintf(w, "  %s.%s %s\n", e.NodeTable, e.NodeCol, e.Rows)
	}
	return nil
}
