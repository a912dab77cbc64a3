package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowgraph/rowgraph/internal/canon"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <document-dir>",
		Short: "Compile a document catalog to canonical JSON",
		Long: `Compile CUE document declarations into the canonical JSON catalog.

The catalog is validated first, then emitted deterministically: sorted
keys, NFC-normalized strings. Byte-identical input yields byte-identical
output, so catalogs diff cleanly under version control.

Examples:
  rowgraph compile ./doc
  rowgraph compile ./doc -o catalog.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write catalog to file instead of stdout")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	if err := result.Spec.Validate(); err != nil {
		_ = formatter.Error(ErrCodeInvalidSpec, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %v", err))
	}

	catalog, err := canon.MarshalIndent(result.Spec.Canonical())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode catalog", err)
	}
	catalog = append(catalog, '\n')

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, catalog, 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write catalog", err)
		}
		formatter.VerboseLog("Wrote catalog to %s", opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(map[string]any{"output": opts.Output})
		}
		fmt.Fprintf(formatter.Writer, "✓ Catalog written to %s\n", opts.Output)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(catalog)
	return err
}
