package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"matchdata/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent ingest runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return errors.New("ledger is disabled; set [ledger] enabled = true to record runs")
			}
			store, err := ledger.Open(cmd.Context(), cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func renderHistory(runs []ledger.Run) string {
	headers := []string{"Run", "Started", "Profile", "Took", "Folders", "Files ok", "Errors", "New rows", "Archives"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	total := 0
	for _, run := range runs {
		written := 0
		for _, t := range run.Targets {
			if t.Written {
				written++
			}
		}
		total += run.NewRows
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Profile,
			run.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(run.Folders),
			strconv.Itoa(run.FilesOK),
			strconv.Itoa(run.Errors),
			strconv.Itoa(run.NewRows),
			fmt.Sprintf("%d/%d", written, len(run.Targets)),
		})
	}
	footer := []string{"", "", "", "", "", "", "Total", strconv.Itoa(total), ""}
	return renderTable(headers, rows, aligns, footer)
}
