package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fileorg/internal/executor"
	"fileorg/internal/organizer"
	"fileorg/internal/planner"
	"fileorg/internal/tree"
)

func renderPlan(out io.Writer, result *organizer.Result, details bool) {
	plan := result.Plan
	fmt.Fprintln(out, "Proposed directory structure:")
	_ = tree.Simulate(plan).Render(out)
	fmt.Fprintln(out)

	counts := plan.Counts()
	fmt.Fprintf(out, "Mode %s: %d of %d files planned (%d copy, %d hardlink, %d symlink)\n",
		result.Mode, plan.Len(), len(result.Items),
		counts[planner.ActionCopy], counts[planner.ActionHardlink], counts[planner.ActionSymlink])

	if details && plan.Len() > 0 {
		rows := make([][]string, 0, plan.Len())
		for i, op := range plan.Operations {
			rows = append(rows, []string{fmt.Sprint(i + 1), op.Action.String(), op.Source, plan.Relative(op)})
		}
		fmt.Fprintln(out, renderTable(
			[]column{right("#"), left("Action"), left("Source"), left("Destination")}, rows))
	}

	if len(result.Diagnostics) > 0 {
		fmt.Fprintf(out, "Skipped %d file(s):\n", len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			fmt.Fprintf(out, "  %s (%s): %v\n", d.Source, d.Stage, d.Err)
		}
	}
	if len(plan.Skipped) > 0 {
		fmt.Fprintf(out, "Already processed: %s\n", strings.Join(plan.Skipped, ", "))
	}
}

func renderReport(out io.Writer, report *executor.Report) {
	fmt.Fprintf(out, "Applied %d, failed %d in %s\n",
		report.Applied(), report.Failed(), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	if report.Failed() == 0 {
		return
	}
	var rows [][]string
	for _, entry := range report.Entries {
		if entry.Status != executor.StatusFailed {
			continue
		}
		rows = append(rows, []string{entry.Operation.Source, entry.Operation.Destination, entry.Reason})
	}
	fmt.Fprintln(out, renderTable([]column{left("Source"), left("Destination"), left("Reason")}, rows))
}
