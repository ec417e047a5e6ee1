package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fileorg/internal/journal"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded organize runs, or the entries of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintf(out, "No runs recorded in %s\n", store.Path())
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			}

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s (%s, dry run: %s)\n", run.ID, run.Mode, yesNo(run.DryRun))
			fmt.Fprintf(out, "Input:  %s\nOutput: %s\n", run.InputDir, run.OutputDir)
			fmt.Fprintf(out, "Started %s, applied %d, failed %d\n",
				formatHistoryTime(run.StartedAt), run.Applied, run.Failed)
			if logPath := cfg.RunLogPath(run.ID); fileExists(logPath) {
				fmt.Fprintf(out, "Log: %s\n", logPath)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			fmt.Fprintln(out, renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func renderRuns(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			formatHistoryTime(run.StartedAt),
			run.Mode,
			yesNo(run.DryRun),
			fmt.Sprint(run.Applied),
			fmt.Sprint(run.Failed),
			run.OutputDir,
		})
	}
	return renderTable([]column{
		left("ID"), left("Started"), left("Mode"), left("Dry Run"),
		right("Applied"), right("Failed"), left("Output"),
	}, rows)
}

func renderEntries(entries []journal.EntryRecord) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprint(e.Seq), e.Action, e.Status, e.Source, e.Destination, e.Reason})
	}
	return renderTable([]column{
		right("#"), left("Action"), left("Status"),
		left("Source"), left("Destination"), left("Reason"),
	}, rows)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func formatHistoryTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}
