// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/history"
	"github.com/pdiddy/docpress/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History lists runs recorded in the run-history database, newest
first, including each run's failure diagnostics. Runs are only recorded
when "docpress run" is given a history database path.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history", "docpress-history.db", "SQLite history database path")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("failures", false, "include failure diagnostics per run")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("history")
	limit, _ := cmd.Flags().GetInt("limit")
	showFailures, _ := cmd.Flags().GetBool("failures")

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("history database %s: %w", path, err)
	}

	store, err := history.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Println(renderRuns(runs))

	if showFailures {
		for _, run := range runs {
			for _, f := range run.Failures {
				fmt.Printf("%s  failed: %s (%s)\n", shortID(run.RunID), f.SourcePath, f.Diagnostic)
			}
		}
	}
	return nil
}

// renderRuns formats runs as a rounded table on a terminal and as plain
// rows when output is piped.
func renderRuns(runs []types.RunReport) string {
	tw := table.NewWriter()
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Run", "Started", "Input", "Total", "OK", "Failed", "Skipped", "Duration"})
	for _, r := range runs {
		tw.AppendRow(table.Row{
			shortID(r.RunID),
			r.Started.Local().Format(time.DateTime),
			r.InputRoot,
			r.Total,
			r.Succeeded,
			r.Failed,
			r.Skipped,
			r.Duration.Round(time.Millisecond),
		})
	}
	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
