package ingest

import (
	"time"

	"matchdata/internal/ledger"
)

// TargetResult is the merge outcome for one archive file.
type TargetResult struct {
	Name     string
	Archive  string
	Incoming int
	Existing int
	Kept     int
	External int
	Internal int
	Invalid  int
	Written  bool
	Err      error
}

// FixtureCount is the number of new rows one report contributed for a
// fixture.
type FixtureCount struct {
	Matchday   string
	Fixture    string
	ReportType string
	Rows       int
}

// RunStats summarizes one profile run.
type RunStats struct {
	RunID      string
	Profile    string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time

	Folders          int
	FoldersProcessed int
	FilesOK          int
	SheetsOK         int
	SheetsSkipped    int
	// Errors tallies folders without inputs, unreadable workbooks and files
	// that produced no records.
	Errors  int
	NewRows int

	Targets  []TargetResult
	Fixtures []FixtureCount
}

// Duration is the wall-clock time of the run.
func (s RunStats) Duration() time.Duration {
	if s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// FailedTargets counts targets whose archive could not be written.
func (s RunStats) FailedTargets() int {
	n := 0
	for _, t := range s.Targets {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// LedgerRun converts the stats into a ledger entry.
func (s RunStats) LedgerRun() ledger.Run {
	run := ledger.Run{
		ID:         s.RunID,
		Profile:    s.Profile,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		DryRun:     s.DryRun,
		Folders:    s.Folders,
		FilesOK:    s.FilesOK,
		Errors:     s.Errors,
		NewRows:    s.NewRows,
	}
	for _, t := range s.Targets {
		lt := ledger.Target{
			Name:     t.Name,
			Archive:  t.Archive,
			Incoming: t.Incoming,
			Existing: t.Existing,
			Kept:     t.Kept,
			External: t.External,
			Internal: t.Internal,
			Invalid:  t.Invalid,
			Written:  t.Written,
		}
		if t.Err != nil {
			lt.Error = t.Err.Error()
		}
		run.Targets = append(run.Targets, lt)
	}
	return run
}
