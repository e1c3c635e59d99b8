package ledger

import "time"

// Run is one ingestion run of a single profile.
type Run struct {
	ID         string
	Profile    string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Folders    int
	FilesOK    int
	Errors     int
	NewRows    int
	Targets    []Target
}

// Duration is the wall-clock time the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Target is the merge outcome for one archive file within a run.
type Target struct {
	Name     string
	Archive  string
	Incoming int
	Existing int
	Kept     int
	External int
	Internal int
	Invalid  int
	Written  bool
	Error    string
}
