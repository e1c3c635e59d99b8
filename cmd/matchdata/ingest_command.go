package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"matchdata/internal/config"
	"matchdata/internal/ingest"
	"matchdata/internal/ledger"
	"matchdata/internal/profile"
)

const profileAll = "all"

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag, outputFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:       "ingest performance|peak|all",
		Short:     "Merge new report rows into the Parquet archives",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{profile.NamePerformance, profile.NamePeak, profileAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := resolveProfiles(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			run := *cfg
			if err := applyPathOverrides(&run, sourceFlag, outputFlag); err != nil {
				return err
			}
			return runIngest(cmd, ctx, &run, profiles, dryRun)
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "Directory holding one folder per match (overrides paths.source_dir)")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Archive directory (overrides paths.output_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the merge without writing archives or the ledger")
	return cmd
}

func resolveProfiles(name string) ([]*profile.Profile, error) {
	if strings.EqualFold(strings.TrimSpace(name), profileAll) {
		return profile.All(), nil
	}
	p, err := profile.Lookup(name)
	if err != nil {
		return nil, err
	}
	return []*profile.Profile{p}, nil
}

func applyPathOverrides(cfg *config.Config, source, output string) error {
	if strings.TrimSpace(source) != "" {
		expanded, err := config.ExpandPath(strings.TrimSpace(source))
		if err != nil {
			return fmt.Errorf("resolve --source: %w", err)
		}
		cfg.Paths.SourceDir = expanded
	}
	if strings.TrimSpace(output) != "" {
		expanded, err := config.ExpandPath(strings.TrimSpace(output))
		if err != nil {
			return fmt.Errorf("resolve --output: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	return cfg.Validate()
}

func runIngest(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, profiles []*profile.Profile, dryRun bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closeLog, err := ctx.logger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var recorder ingest.Recorder
	if cfg.Ledger.Enabled && !dryRun {
		store, err := ledger.Open(signalCtx, cfg.Paths.LedgerPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	runner := ingest.NewRunner(ingest.Options{
		SourceDir:   cfg.Paths.SourceDir,
		OutputDir:   cfg.Paths.OutputDir,
		Season:      cfg.Season.Season,
		Competition: cfg.Season.Competition,
		LockPath:    cfg.LockPath(),
		DryRun:      dryRun,
	}, logger, recorder)

	results, runErr := runner.Run(signalCtx, profiles...)
	out := cmd.OutOrStdout()
	for _, stats := range results {
		printRunSummary(out, stats)
	}
	return runErr
}

func printRunSummary(out io.Writer, stats ingest.RunStats) {
	title := fmt.Sprintf("%s run %s", stats.Profile, shortID(stats.RunID))
	if stats.DryRun {
		title += " (dry run)"
	}
	for _, line := range renderSectionHeader(title, shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}

	if len(stats.Targets) > 0 {
		headers := []string{"Archive", "Incoming", "Existing", "New", "Archived", "Repeated", "Invalid", "Written"}
		aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
		rows := make([][]string, 0, len(stats.Targets))
		for _, t := range stats.Targets {
			written := yesNo(t.Written)
			if t.Err != nil {
				written = "failed"
			}
			rows = append(rows, []string{
				t.Archive,
				strconv.Itoa(t.Incoming),
				strconv.Itoa(t.Existing),
				strconv.Itoa(t.Kept),
				strconv.Itoa(t.External),
				strconv.Itoa(t.Internal),
				strconv.Itoa(t.Invalid),
				written,
			})
		}
		fmt.Fprintln(out, renderTable(headers, rows, aligns, nil))
	}

	if len(stats.Fixtures) > 0 {
		fmt.Fprintln(out, "New rows by fixture:")
		for _, fc := range stats.Fixtures {
			fmt.Fprintf(out, "  %s | %s | %s: %d\n", fc.Matchday, fc.Fixture, fc.ReportType, fc.Rows)
		}
	}

	fmt.Fprintf(out, "Folders: %d (%d with inputs)  Files ok: %d  Errors: %d  New rows: %d  Took: %s\n",
		stats.Folders, stats.FoldersProcessed, stats.FilesOK, stats.Errors, stats.NewRows,
		stats.Duration().Round(time.Millisecond))
	if failed := stats.FailedTargets(); failed > 0 {
		fmt.Fprintf(out, "%d archive(s) could not be written; see the log for details\n", failed)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
