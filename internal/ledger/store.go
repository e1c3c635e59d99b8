package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store records ingestion runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// timeLayout is fixed width so stored timestamps order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// connPragmas are applied by the driver to every pooled connection.
var connPragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)", "foreign_keys(1)"}

// Open creates or opens the ledger database at path, creating parent
// directories as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	query := url.Values{"_pragma": connPragmas}
	db, err := sql.Open("sqlite", path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a run together with its per-target results.
func (s *Store) Record(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	return withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, profile, started_at, finished_at, dry_run, folders, files_ok, errors, new_rows)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Profile,
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
			boolToInt(run.DryRun),
			run.Folders,
			run.FilesOK,
			run.Errors,
			run.NewRows,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, t := range run.Targets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_targets (
                    run_id, position, target, archive, incoming, existing, kept,
                    external_dupes, internal_dupes, invalid_keys, written, error_message
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i, t.Name, t.Archive, t.Incoming, t.Existing, t.Kept,
				t.External, t.Internal, t.Invalid, boolToInt(t.Written), nullableString(t.Error),
			); err != nil {
				return fmt.Errorf("insert run target %s: %w", t.Archive, err)
			}
		}
		return tx.Commit()
	})
}

// Recent returns up to limit runs, newest first, with their targets.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, started_at, finished_at, dry_run, folders, files_ok, errors, new_rows
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                     Run
			startedRaw, finishedRaw string
			dryRun                  int
		)
		if err := rows.Scan(&run.ID, &run.Profile, &startedRaw, &finishedRaw, &dryRun,
			&run.Folders, &run.FilesOK, &run.Errors, &run.NewRows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		if t, err := parseTimeString(startedRaw); err == nil {
			run.StartedAt = t
		}
		if t, err := parseTimeString(finishedRaw); err == nil {
			run.FinishedAt = t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		targets, err := s.targets(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Targets = targets
	}
	return runs, nil
}

func (s *Store) targets(ctx context.Context, runID string) ([]Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target, archive, incoming, existing, kept, external_dupes, internal_dupes,
                invalid_keys, written, error_message
         FROM run_targets WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run targets: %w", err)
	}
	defer rows.Close()

	var out []Target
	for rows.Next() {
		var (
			t       Target
			written int
			errMsg  sql.NullString
		)
		if err := rows.Scan(&t.Name, &t.Archive, &t.Incoming, &t.Existing, &t.Kept,
			&t.External, &t.Internal, &t.Invalid, &written, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run target: %w", err)
		}
		t.Written = written != 0
		t.Error = errMsg.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run targets: %w", err)
	}
	return out, nil
}

// busy reports whether err is SQLite's SQLITE_BUSY, including the extended
// codes that share its primary code.
func busy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code()&0xff == sqlite3.SQLITE_BUSY
}

// withBusyRetry runs op again with doubling backoff while the database is
// busy, giving up after busyRetryAttempts tries or when ctx ends.
func withBusyRetry(ctx context.Context, op func() error) error {
	backoff := busyRetryInitialBackoff
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !busy(err) || attempt == busyRetryAttempts {
			return err
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, busyRetryMaxBackoff)
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(timeLayout, value)
}
