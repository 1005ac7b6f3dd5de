package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sxlrun/internal/config"
	"sxlrun/internal/sxl"
	"sxlrun/internal/validator"
)

// ValidateCommand creates the "validate" CLI command.
func ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate SXL source against a DSL grammar",
		Long: `Parses SXL source (from a file argument, or stdin if omitted) and
validates it against the named DSL grammar, resolving any EMBED subtree
against the rest of the loaded grammar registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dslID, _ := cmd.Flags().GetString("dsl")
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			asJSON, _ := cmd.Flags().GetBool("json")

			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return RunValidate(cmd.Context(), cmd.OutOrStdout(), path, dslID, grammarDir, asJSON)
		},
	}

	cmd.Flags().String("dsl", "sxl-plan", "dsl id to validate against")
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	cmd.Flags().Bool("json", false, "print validation failures as a structured JSON diagnostic")
	return cmd
}

// RunValidate executes the "validate" command's logic.
func RunValidate(ctx context.Context, out io.Writer, path, dslID, grammarDir string, asJSON bool) error {
	if grammarDir == "" {
		grammarDir = config.GetGrammarDirConfig().Dir
	}

	var source []byte
	var err error
	if path == "" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("validate: read source: %w", err)
	}

	registry, err := newDemoGrammarRegistry(grammarDir)
	if err != nil {
		return err
	}

	g, found := registry.Lookup(dslID)
	if !found {
		return fmt.Errorf("validate: unknown dsl id %q", dslID)
	}

	nodes, err := sxl.ParseAll(string(source))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if err := validator.Validate(nodes, g, registry); err != nil {
		var ve *validator.ValidationError
		if asJSON && errors.As(err, &ve) {
			if data, merr := json.MarshalIndent(ve.ToDiagnostic(), "", "  "); merr == nil {
				fmt.Fprintln(out, string(data))
			}
		}
		return err
	}

	fmt.Fprintf(out, "OK: %d top-level expression(s) valid against %s\n", len(nodes), dslID)
	return nil
}
