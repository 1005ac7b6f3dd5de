package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sxlrun/internal/action"
	"sxlrun/internal/config"
	"sxlrun/internal/engine"
	"sxlrun/internal/exec"
	"sxlrun/internal/plan"
)

// ScheduleCommand creates the "schedule" CLI command.
func ScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build and print the execution DAG for a plan, without running it",
		Long: `Resolves a wire-format plan (from a file argument, or stdin if omitted)
against the demo action catalog and prints the resulting execution order,
dependency edges, and estimated critical path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return RunSchedule(cmd.Context(), cmd.OutOrStdout(), path, grammarDir)
		},
	}
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	return cmd
}

// RunSchedule executes the "schedule" command's logic.
func RunSchedule(ctx context.Context, out io.Writer, path, grammarDir string) error {
	dag, _, err := buildDemoDAG(path, grammarDir)
	if err != nil {
		return err
	}
	printDAG(out, dag)
	return nil
}

func buildDemoDAG(path, grammarDir string) (*exec.ExecutionDAG, *exec.ExecutionContext, error) {
	if grammarDir == "" {
		grammarDir = config.GetGrammarDirConfig().Dir
	}

	grammars, err := newDemoGrammarRegistry(grammarDir)
	if err != nil {
		return nil, nil, err
	}

	var source []byte
	if path == "" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("schedule: read plan: %w", err)
	}

	p, err := plan.Unmarshal(source)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule: parse plan: %w", err)
	}

	registry := newDemoActionRegistry()
	funcs := newDemoFunctionRegistry()
	binder := action.NewBinder(grammars)
	execCtx := exec.NewExecutionContext()

	resolved, err := engine.Resolve(p, registry, binder, funcs, execCtx)
	if err != nil {
		return nil, nil, err
	}

	dag, err := exec.BuildDAG(resolved)
	if err != nil {
		return nil, nil, err
	}
	return dag, execCtx, nil
}

func printDAG(out io.Writer, dag *exec.ExecutionDAG) {
	for _, n := range dag.Nodes {
		var reasons []string
		for _, e := range n.DependencyEdges {
			reasons = append(reasons, fmt.Sprintf("%s(%s)", e.TargetStepID, strings.Join(e.Reasons, ",")))
		}
		fmt.Fprintf(out, "%d. %s [%s] depends on: %s\n", n.OrderIndex, n.StepID, n.Action.Metadata.ActionName, strings.Join(reasons, ", "))
	}
	if dag.EstimatedDurationMS > 0 {
		fmt.Fprintf(out, "estimated duration: %dms, critical path: %s\n", dag.EstimatedDurationMS, strings.Join(dag.CriticalPath, " -> "))
	}
}
