package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"sxlrun/internal/config"
	"sxlrun/internal/eventlog"
	"sxlrun/internal/exec"
)

// RunCommand creates the "run" CLI command.
func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule and execute a plan end to end against the demo catalog",
		Long: `Resolves a wire-format plan (from a file argument, or stdin if omitted),
schedules it into a DAG, executes it against a fresh ExecutionContext, and
prints the resulting context. Lifecycle events are appended to the
Postgres event log unless --no-eventlog is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarDir, _ := cmd.Flags().GetString("grammar-dir")
			noEventlog, _ := cmd.Flags().GetBool("no-eventlog")
			parallel, _ := cmd.Flags().GetBool("parallel")
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return RunRun(cmd.Context(), cmd.OutOrStdout(), path, grammarDir, noEventlog, parallel)
		},
	}
	cmd.Flags().String("grammar-dir", "", "directory of grammar YAML files (defaults to SXLRUN_GRAMMAR_DIR or testdata/grammars)")
	cmd.Flags().Bool("no-eventlog", false, "skip appending lifecycle events to the Postgres event log")
	cmd.Flags().Bool("parallel", false, "run independent steps concurrently, one dependency level at a time")
	return cmd
}

// RunRun executes the "run" command's logic.
func RunRun(ctx context.Context, out io.Writer, path, grammarDir string, noEventlog, parallel bool) error {
	dag, execCtx, err := buildDemoDAG(path, grammarDir)
	if err != nil {
		return err
	}

	executor := exec.NewExecutor()
	executor.IsTransient = exec.NeverTransient

	cfg := config.GetExecutorConfig()
	executor.BaseBackoff = cfg.BaseBackoff
	executor.MaxBackoff = cfg.MaxBackoff

	if !noEventlog {
		elCfg := config.GetEventLogConfig()
		if elCfg.Enabled {
			if elog, err := eventlog.Open(elCfg.ConnectionString); err != nil {
				log.Printf("run: event log unavailable, continuing without it: %v", err)
			} else {
				defer elog.Close()
				executor.Emitter = elog
			}
		}
	}

	if parallel {
		scheduler := &exec.Scheduler{Executor: executor}
		_, err = scheduler.Execute(ctx, dag, execCtx)
	} else {
		_, err = executor.Execute(ctx, dag, execCtx)
	}
	if err != nil {
		return err
	}

	for k, v := range execCtx.Snapshot() {
		fmt.Fprintf(out, "%s = %#v\n", k, v)
	}
	return nil
}
