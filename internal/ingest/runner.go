package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"matchdata/internal/archive"
	"matchdata/internal/dedup"
	"matchdata/internal/fixture"
	"matchdata/internal/ledger"
	"matchdata/internal/logging"
	"matchdata/internal/profile"
	"matchdata/internal/record"
	"matchdata/internal/transform"
	"matchdata/internal/workbook"
)

// Recorder persists a finished run. *ledger.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run ledger.Run) error
}

// Options configures a Runner.
type Options struct {
	SourceDir   string
	OutputDir   string
	Season      string
	Competition string
	// LockPath overrides the default <output_dir>/.matchdata.lock.
	LockPath string
	// DryRun computes every merge but writes neither archives nor ledger
	// entries, and takes no lock.
	DryRun bool
}

func (o Options) lockPath() string {
	if o.LockPath != "" {
		return o.LockPath
	}
	return filepath.Join(o.OutputDir, ".matchdata.lock")
}

// Runner walks match folders and merges their reports into the archives.
type Runner struct {
	opts     Options
	logger   *slog.Logger
	recorder Recorder
	newID    func() string
	now      func() time.Time
}

// NewRunner constructs a Runner. recorder may be nil.
func NewRunner(opts Options, logger *slog.Logger, recorder Recorder) *Runner {
	return &Runner{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "ingest"),
		recorder: recorder,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Run ingests each profile in turn under a single output-directory lock.
// Stats for every profile that ran are returned even when a later one fails.
func (r *Runner) Run(ctx context.Context, profiles ...*profile.Profile) ([]RunStats, error) {
	if !r.opts.DryRun {
		lock, err := AcquireLock(r.opts.lockPath())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.WarnWithContext(r.logger, "failed to release lock", "lock_release_failed",
					logging.String("lock_path", lock.Path()),
					logging.Error(err),
					logging.Hint("remove the lock file if no other run is active"),
					logging.Impact("next run may report the directory as locked"),
				)
			}
		}()
	}

	results := make([]RunStats, 0, len(profiles))
	for _, p := range profiles {
		stats, err := r.runProfile(ctx, p)
		results = append(results, stats)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) runProfile(ctx context.Context, p *profile.Profile) (RunStats, error) {
	runID := r.newID()
	ctx = logging.WithRun(ctx, runID, p.Name)
	logger := logging.WithContext(ctx, r.logger)

	stats := RunStats{
		RunID:     runID,
		Profile:   p.Name,
		DryRun:    r.opts.DryRun,
		StartedAt: r.now(),
	}

	entries, err := os.ReadDir(r.opts.SourceDir)
	if err != nil {
		stats.FinishedAt = r.now()
		return stats, fmt.Errorf("list source directory: %w", err)
	}

	logger.Info("ingest started",
		logging.String("source_dir", r.opts.SourceDir),
		logging.String("output_dir", r.opts.OutputDir),
		logging.Bool("dry_run", r.opts.DryRun),
	)

	acc := newAccumulator()
	tr := transform.New(p.Transform)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			stats.FinishedAt = r.now()
			return stats, err
		}
		r.processFolder(logger, p, tr, entry.Name(), acc, &stats)
	}

	if acc.empty() {
		logger.Info("no records gathered", logging.Int("folders", stats.Folders))
	}

	var counter fixtureCounter
	for _, target := range acc.targets() {
		if err := ctx.Err(); err != nil {
			stats.FinishedAt = r.now()
			return stats, err
		}
		res, kept := r.mergeTarget(ctx, logger, p, target, acc.records(target))
		stats.Targets = append(stats.Targets, res)
		if res.Err != nil {
			continue
		}
		stats.NewRows += len(kept)
		counter.add(p.Transform.Layout, kept)
		if len(kept) > 0 {
			logColumns(logger, res.Archive, CheckColumns(kept, p.MetadataColumns()))
		}
	}
	stats.Fixtures = counter.counts
	stats.FinishedAt = r.now()

	for _, fc := range stats.Fixtures {
		logger.Info("new rows",
			logging.String("matchday", fc.Matchday),
			logging.String("fixture", fc.Fixture),
			logging.String("report_type", fc.ReportType),
			logging.Int("rows", fc.Rows),
		)
	}
	logger.Info("ingest finished",
		logging.Int("folders", stats.Folders),
		logging.Int("folders_processed", stats.FoldersProcessed),
		logging.Int("files_ok", stats.FilesOK),
		logging.Int("sheets_ok", stats.SheetsOK),
		logging.Int("sheets_skipped", stats.SheetsSkipped),
		logging.Int("errors", stats.Errors),
		logging.Int("new_rows", stats.NewRows),
		logging.Duration("duration", stats.Duration()),
	)

	if r.recorder != nil && !r.opts.DryRun {
		if err := r.recorder.Record(ctx, stats.LedgerRun()); err != nil {
			logging.ErrorWithContext(logger, "failed to record run in ledger", "ledger_record_failed",
				logging.Error(err),
				logging.Hint("check the ledger_path setting and disk space"),
			)
		}
	}
	return stats, nil
}

func (r *Runner) processFolder(logger *slog.Logger, p *profile.Profile, tr *transform.Transformer, name string, acc *accumulator, stats *RunStats) {
	stats.Folders++
	folderLog := logger.With(logging.Folder(name))
	dir := filepath.Join(r.opts.SourceDir, name)

	d, err := p.Discover(dir)
	if err != nil {
		stats.Errors++
		logging.WarnWithContext(folderLog, "folder unreadable", "folder_unreadable", logging.Error(err))
		return
	}
	if len(d.Inputs) == 0 {
		stats.Errors++
		logging.WarnWithContext(folderLog, "no input workbooks found", "inputs_missing",
			logging.Int("workbooks", len(d.Workbooks)),
			logging.Hint("run matchdata diagnose to inspect file names"),
		)
		return
	}
	if d.Fallback {
		folderLog.Info("using fallback workbooks", logging.Int("inputs", len(d.Inputs)))
	} else if !d.Complete() {
		folderLog.Info("only some input workbooks present",
			logging.Int("found", len(d.Inputs)),
			logging.Int("expected", d.Expected),
		)
	}
	stats.FoldersProcessed++

	info := fixture.Parse(name)
	for _, in := range d.Inputs {
		n := r.processFile(folderLog, p, tr, in, info, acc, stats)
		if n > 0 {
			stats.FilesOK++
		} else {
			stats.Errors++
		}
	}
}

// processFile returns the number of records the workbook contributed.
func (r *Runner) processFile(logger *slog.Logger, p *profile.Profile, tr *transform.Transformer, in profile.Input, info fixture.Info, acc *accumulator, stats *RunStats) int {
	fileLog := logger.With(logging.File(in.Name))

	wb, err := workbook.Open(in.Path)
	if err != nil {
		logging.ErrorWithContext(fileLog, "workbook unreadable", "workbook_open_failed", logging.Error(err))
		return 0
	}
	defer func() {
		if err := wb.Close(); err != nil {
			fileLog.Debug("workbook close failed", logging.Error(err))
		}
	}()

	src := transform.Source{
		Season:      r.opts.Season,
		Competition: r.opts.Competition,
		Fixture:     info,
		ReportType:  in.ReportType,
		FileName:    in.Name,
	}

	total := 0
	for _, sheet := range p.Sheets(wb.SheetNames()) {
		sheetLog := fileLog.With(logging.Sheet(sheet))
		g, err := wb.Sheet(sheet)
		if err != nil {
			stats.SheetsSkipped++
			logging.WarnWithContext(sheetLog, "sheet unreadable", "sheet_read_failed", logging.Error(err))
			continue
		}
		out, err := tr.Sheet(g, src)
		if err != nil {
			stats.SheetsSkipped++
			logging.WarnWithContext(sheetLog, "sheet skipped", sheetEvent(err),
				logging.Error(err),
				logging.Hint(sheetHint(err)),
				logging.Impact("sheet contributes no rows"),
			)
			continue
		}
		if len(out.Records) == 0 {
			sheetLog.Info("sheet has no data rows", logging.Int("header_row", out.HeaderRow+1))
			continue
		}
		stats.SheetsOK++
		acc.add(p.Target(sheet), out.Records)
		total += len(out.Records)
		sheetLog.Debug("sheet processed",
			logging.String("team", out.Team),
			logging.Int("rows", len(out.Records)),
			logging.Int("columns", len(out.Columns)),
			logging.Int("empty_rows", out.Skipped),
		)
	}
	if total == 0 {
		logging.WarnWithContext(fileLog, "workbook produced no records", "workbook_empty")
	}
	return total
}

func sheetEvent(err error) string {
	switch {
	case errors.Is(err, transform.ErrNoTeam):
		return "team_not_found"
	case errors.Is(err, transform.ErrNoHeader):
		return "header_not_found"
	default:
		return "sheet_transform_failed"
	}
}

func sheetHint(err error) string {
	switch {
	case errors.Is(err, transform.ErrNoTeam):
		return "check the report title cell near the top of the sheet"
	case errors.Is(err, transform.ErrNoHeader):
		return "check that the sheet has an \"Id Jugador\" header cell"
	default:
		return "inspect the source workbook"
	}
}

// mergeTarget runs the read-filter-write cycle for one archive and returns
// the rows that were appended.
func (r *Runner) mergeTarget(ctx context.Context, logger *slog.Logger, p *profile.Profile, target string, incoming []record.Record) (TargetResult, []record.Record) {
	file := p.ArchiveFile(target)
	path := filepath.Join(r.opts.OutputDir, file)
	targetLog := logger.With(logging.Target(file))

	res := TargetResult{Name: target, Archive: file, Incoming: len(incoming)}

	existing, err := archive.Read(ctx, path)
	if err != nil {
		logging.WarnWithContext(targetLog, "existing archive unreadable; starting empty", "archive_read_failed",
			logging.Error(err),
			logging.Hint("restore the archive from backup if its rows matter"),
			logging.Impact("archive will be rewritten with this run's rows only"),
		)
		existing = nil
	}
	res.Existing = len(existing)

	idx := dedup.NewIndex(existing, p.Key)
	if n := idx.Invalid(); n > 0 {
		targetLog.Debug("archived rows without a usable key", logging.Int("rows", n))
	}
	filtered := dedup.Filter(incoming, idx, p.Key)
	res.Kept = len(filtered.Kept)
	res.External = filtered.External
	res.Internal = filtered.Internal
	res.Invalid = filtered.Invalid
	if filtered.Invalid > 0 {
		logging.WarnWithContext(targetLog, "rows with empty duplicate key dropped", "dedup_key_invalid",
			logging.Int("rows", filtered.Invalid),
			logging.Impact("rows not archived"),
		)
	}

	targetLog.Info("deduplicated",
		logging.Int("incoming", res.Incoming),
		logging.Int("existing", res.Existing),
		logging.Int("kept", res.Kept),
		logging.Int("already_archived", res.External),
		logging.Int("repeated", res.Internal),
	)

	if len(filtered.Kept) == 0 {
		targetLog.Info("no new rows; archive left untouched")
		return res, nil
	}
	if r.opts.DryRun {
		targetLog.Info("dry run; archive not written", logging.Int("rows", len(existing)+res.Kept))
		return res, filtered.Kept
	}

	merged := make([]record.Record, 0, len(existing)+len(filtered.Kept))
	merged = append(merged, existing...)
	merged = append(merged, filtered.Kept...)
	written, err := archive.Write(ctx, path, merged)
	if err != nil {
		res.Err = err
		logging.ErrorWithContext(targetLog, "archive write failed", "archive_write_failed",
			logging.Error(err),
			logging.Hint("check output_dir permissions and free space"),
		)
		return res, nil
	}
	res.Written = written
	targetLog.Info("archive written", logging.Int("rows", len(merged)), logging.Int("new_rows", res.Kept))
	return res, filtered.Kept
}
