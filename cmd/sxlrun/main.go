// Command sxlrun drives the planning/execution engine from the command
// line: validating SXL source against a grammar, binding a plan step's
// arguments, scheduling a plan into a DAG, and running a plan end to
// end. It wires the demo action catalog declared in demo.go; a real host
// replaces newDemoActionRegistry/newDemoFunctionRegistry with its own.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "sxlrun",
		Short: "Planning/execution engine CLI for the SXL action runtime",
	}

	root.AddCommand(
		ValidateCommand(),
		BindCommand(),
		ScheduleCommand(),
		RunCommand(),
		PromptCommand(),
		PlanCommand(),
		HistoryCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
