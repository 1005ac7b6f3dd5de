package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sxlrun/internal/config"
	"sxlrun/internal/prompt"
)

// PromptCommand creates the "prompt" CLI command.
func PromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Assemble the system prompt for the demo action catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			return RunPrompt(cmd.Context(), cmd.OutOrStdout(), mode, grammarDir)
		},
	}
	cmd.Flags().String("mode", "sxl", `prompt mode: "sxl" or "json"`)
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	return cmd
}

// RunPrompt executes the "prompt" command's logic.
func RunPrompt(ctx context.Context, out io.Writer, mode, grammarDir string) error {
	if grammarDir == "" {
		grammarDir = config.GetGrammarDirConfig().Dir
	}

	grammars, err := newDemoGrammarRegistry(grammarDir)
	if err != nil {
		return err
	}

	promptCfg := config.GetPromptConfig()
	registry := newDemoActionRegistry()

	m := prompt.ModeSXL
	if mode == "json" {
		m = prompt.ModeJSON
	}

	text, err := prompt.Build(prompt.BuildRequest{
		Registry: registry,
		Grammars: grammars,
		Mode:     m,
		Provider: promptCfg.Provider,
		Model:    promptCfg.Model,
		ExamplePlan: func() string {
			return `{"message": "greet the customer", "steps": [{"actionId": "fetchCustomer", "parameters": {"id": "7"}}, {"actionId": "greet", "parameters": {}}]}`
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, text)
	return nil
}
