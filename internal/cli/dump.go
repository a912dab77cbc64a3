package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowgraph/rowgraph/internal/canon"
	"github.com/rowgraph/rowgraph/internal/compiler"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <document-dir>",
		Short: "Dump the dependency graph a catalog declares",
		Long: `Build the dependency graph from a document catalog's declared reads
and print every edge.

Edges are listed by id in registration order. Text output shows one
edge per line; JSON output is canonical and diff-stable.

Examples:
  rowgraph dump ./doc
  rowgraph dump ./doc --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDump(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := LoadDocument(dir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	g, err := compiler.BuildGraph(result.Spec)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidSpec, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("graph build failed: %v", err))
	}

	edges := g.Dump()

	if formatter.Format == "json" {
		items := make([]any, 0, len(edges))
		for _, e := range edges {
			items = append(items, map[string]any{
				"id":       int64(e.ID),
				"out":      e.Out,
				"in":       e.In,
				"relation": e.Relation,
			})
		}
		data, err := canon.MarshalIndent(map[string]any{"edges": items})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode edges", err)
		}
		data = append(data, '\n')
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	w := cmd.OutOrStdout()
	if len(edges) == 0 {
		fmt.Fprintln(w, "(no edges)")
		return nil
	}
	for _, e := range edges {
		fmt.Fprintf(w, "[%d] %s -> %s (%s)\n", e.ID, e.Out, e.In, e.Relation)
	}
	fmt.Fprintf(w, "%d edge(s)\n", len(edges))
	return nil
}
