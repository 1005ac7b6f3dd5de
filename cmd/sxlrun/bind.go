package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sxlrun/internal/action"
	"sxlrun/internal/config"
	"sxlrun/internal/exec"
)

// BindCommand creates the "bind" CLI command.
func BindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Bind a single action's JSON parameters against the demo catalog",
		Long: `Looks up an action by id in the demo catalog and converts the given
JSON parameter object into bound host arguments, reporting a failure for
every parameter that does not bind rather than stopping at the first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actionID, _ := cmd.Flags().GetString("action")
			params, _ := cmd.Flags().GetString("params")
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			return RunBind(cmd.Context(), cmd.OutOrStdout(), actionID, params, grammarDir)
		},
	}

	cmd.Flags().String("action", "", "action id to bind (required)")
	cmd.Flags().String("params", "{}", "JSON object of step parameters")
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

// RunBind executes the "bind" command's logic.
func RunBind(ctx context.Context, out io.Writer, actionID, paramsJSON, grammarDir string) error {
	if grammarDir == "" {
		grammarDir = config.GetGrammarDirConfig().Dir
	}

	grammars, err := newDemoGrammarRegistry(grammarDir)
	if err != nil {
		return err
	}

	registry := newDemoActionRegistry()
	descriptor, err := registry.Lookup(actionID)
	if err != nil {
		return err
	}

	binder := action.NewBinder(grammars)
	execCtx := exec.NewExecutionContext()

	results, err := binder.Bind(descriptor, json.RawMessage(paramsJSON), execCtx)
	if err != nil {
		return err
	}

	anyFailed := false
	for _, r := range results {
		if r.Succeeded() {
			fmt.Fprintf(out, "%s = %#v\n", r.Param, r.Value)
			continue
		}
		anyFailed = true
		fmt.Fprintf(out, "%s: FAILED: %v\n", r.Param, r.Failure)
	}
	if anyFailed {
		return fmt.Errorf("bind: one or more parameters failed to bind")
	}
	return nil
}
