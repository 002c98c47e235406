package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"driftwatch/internal/report"
)

func printIndexSummary(cmd *cobra.Command, rep *report.IndexReport) {
	rows := [][2]string{
		{"Scanned", humanize.Comma(int64(rep.Stats.Scanned))},
		{"Excluded", humanize.Comma(int64(rep.Stats.Excluded))},
		{"New", humanize.Comma(int64(rep.Stats.HashedNew))},
		{"Updated", humanize.Comma(int64(rep.Stats.HashedUpdated))},
		{"Unchanged", humanize.Comma(int64(rep.Stats.Unchanged))},
		{"Errors", humanize.Comma(int64(rep.Stats.Errors))},
	}
	printSummary(cmd, rep.Root, rep.DB, rep.DurationSeconds, rows)
}

func printVerifySummary(cmd *cobra.Command, rep *report.VerifyReport) {
	rows := [][2]string{
		{"Scanned", humanize.Comma(int64(rep.Stats.Scanned))},
		{"Excluded", humanize.Comma(int64(rep.Stats.Excluded))},
		{"Verified", humanize.Comma(int64(rep.Stats.Verified))},
		{"Mismatched", humanize.Comma(int64(rep.Stats.Mismatched))},
		{"Missing", humanize.Comma(int64(rep.Stats.Missing))},
		{"Untracked", humanize.Comma(int64(rep.Stats.Untracked))},
		{"Errors", humanize.Comma(int64(rep.Stats.Errors))},
		{"DB entries", humanize.Comma(rep.Stats.DBEntries)},
	}
	printSummary(cmd, rep.Root, rep.DB, rep.DurationSeconds, rows)
}

func printSummary(cmd *cobra.Command, root, db string, durationSeconds int64, rows [][2]string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root: %s\n", root)
	fmt.Fprintf(out, "db:   %s\n", db)
	fmt.Fprintf(out, "took: %s\n", (time.Duration(durationSeconds) * time.Second).String())

	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderOutcomeTable(rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s=%s\n", row[0], row[1])
	}
}
