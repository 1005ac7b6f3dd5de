package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sxlrun/internal/config"
	"sxlrun/internal/eventlog"
)

// HistoryCommand creates the "history" CLI command.
func HistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent lifecycle events recorded for an action",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			limit, _ := cmd.Flags().GetInt("limit")
			return RunHistory(cmd.Context(), cmd.OutOrStdout(), name, limit)
		},
	}
	cmd.Flags().String("name", "", "action name to list events for (required)")
	cmd.Flags().Int("limit", 20, "maximum number of events to list")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// RunHistory executes the "history" command's logic.
func RunHistory(ctx context.Context, out io.Writer, name string, limit int) error {
	cfg := config.GetEventLogConfig()
	elog, err := eventlog.Open(cfg.ConnectionString)
	if err != nil {
		return err
	}
	defer elog.Close()

	events, err := elog.History(name, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(out, "no events recorded for %q\n", name)
		return nil
	}

	for _, e := range events {
		fmt.Fprintf(out, "%s  %-9s %-6s %s (%dms)\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"), e.EventType, e.Kind, e.InvocationID, e.DurationMS)
	}
	return nil
}
