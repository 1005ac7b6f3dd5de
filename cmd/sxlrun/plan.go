package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sxlrun/internal/config"
	"sxlrun/internal/llmclient"
	"sxlrun/internal/plan"
	"sxlrun/internal/prompt"
)

// PlanCommand creates the "plan" CLI command.
func PlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <utterance>",
		Short: "Ask the configured LLM to produce a plan for an utterance",
		Long: `Assembles the system prompt for the demo action catalog, sends the
utterance to the Gemini model named by GEMINI_MODEL (authenticated via
GEMINI_API_KEY), and prints the resulting wire-format plan. The plan is
not executed; pipe the output into "sxlrun run" for that.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			return RunPlan(cmd.Context(), cmd.OutOrStdout(), args[0], grammarDir)
		},
	}
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	return cmd
}

// RunPlan executes the "plan" command's logic.
func RunPlan(ctx context.Context, out io.Writer, utterance, grammarDir string) error {
	if grammarDir == "" {
		grammarDir = config.GetGrammarDirConfig().Dir
	}

	grammars, err := newDemoGrammarRegistry(grammarDir)
	if err != nil {
		return err
	}

	llmCfg := config.GetLLMConfig()
	if llmCfg.APIKey == "" {
		return fmt.Errorf("plan: GEMINI_API_KEY is not set")
	}

	promptCfg := config.GetPromptConfig()
	systemPrompt, err := prompt.Build(prompt.BuildRequest{
		Registry: newDemoActionRegistry(),
		Grammars: grammars,
		Mode:     prompt.ModeJSON,
		Provider: promptCfg.Provider,
		Model:    promptCfg.Model,
	})
	if err != nil {
		return err
	}

	generator, err := llmclient.NewGenaiPlanGenerator(ctx, llmCfg.APIKey, llmCfg.Model)
	if err != nil {
		return err
	}

	p, err := generator.GeneratePlan(ctx, systemPrompt, utterance)
	if err != nil {
		return err
	}

	data, err := plan.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
