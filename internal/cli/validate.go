package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowgraph/rowgraph/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                    `json:"valid"`
	Tables   int                     `json:"tables"`
	Columns  int                     `json:"columns"`
	Edges    int                     `json:"edges"`
	Warnings []compiler.CycleWarning `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document-dir>",
		Short: "Validate a document catalog",
		Long: `Validate CUE document declarations without emitting output.

Checks syntax, column types, relation kinds and that every declared
read resolves to an existing column. Faster than compile for
development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result, err := LoadDocument(dir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	if err := result.Spec.Validate(); err != nil {
		_ = formatter.Error(ErrCodeInvalidSpec, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %v", err))
	}

	columns, edges := 0, 0
	for _, table := range result.Spec.Tables {
		columns += len(table.Columns)
		for _, col := range table.Columns {
			edges += len(col.Reads)
		}
	}

	summary := ValidationResult{
		Valid:    true,
		Tables:   len(result.Spec.Tables),
		Columns:  columns,
		Edges:    edges,
		Warnings: compiler.AnalyzeCycles(result.Spec),
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid: %d table(s), %d column(s), %d read(s)\n",
		summary.Tables, summary.Columns, summary.Edges)
	for _, w := range summary.Warnings {
		fmt.Fprintf(formatter.Writer, "⚠ %s\n", w.Message)
	}
	return nil
}

// outputLoadError renders a loader failure and converts it into a
// command-level ExitError.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}
