package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"matchdata/internal/ledger"
)

func openStore(t *testing.T) (*ledger.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	store, err := ledger.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRecordAndRecent(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := ledger.Run{
		ID:         "run-1",
		Profile:    "performance",
		StartedAt:  base,
		FinishedAt: base.Add(3 * time.Second),
		Folders:    4,
		FilesOK:    7,
		Errors:     1,
		NewRows:    40,
		Targets: []ledger.Target{
			{Name: "Físico", Archive: "rendimiento_fisico.parquet", Incoming: 30, Existing: 100, Kept: 25, External: 5, Written: true},
			{Name: "5", Archive: "rendimiento_5.parquet", Incoming: 15, Kept: 15, Error: "disk full"},
		},
	}
	second := ledger.Run{
		ID:         "run-2",
		Profile:    "peak",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Second),
		DryRun:     true,
	}
	for _, run := range []ledger.Run{first, second} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record(%s): %v", run.ID, err)
		}
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].ID != "run-2" || !runs[0].DryRun || len(runs[0].Targets) != 0 {
		t.Fatalf("newest run = %+v", runs[0])
	}
	got := runs[1]
	if got.Profile != "performance" || got.NewRows != 40 || got.Errors != 1 {
		t.Fatalf("run = %+v", got)
	}
	if got.Duration() != 3*time.Second {
		t.Fatalf("duration = %v", got.Duration())
	}
	if len(got.Targets) != 2 {
		t.Fatalf("targets = %+v", got.Targets)
	}
	if got.Targets[0].Name != "Físico" || !got.Targets[0].Written || got.Targets[0].External != 5 {
		t.Fatalf("first target = %+v", got.Targets[0])
	}
	if got.Targets[1].Error != "disk full" || got.Targets[1].Written {
		t.Fatalf("second target = %+v", got.Targets[1])
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("limited = %+v", limited)
	}
}

func TestRecentOrdersWithinOneSecond(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	whole := time.Date(2026, 10, 1, 12, 0, 39, 0, time.UTC)
	later := whole.Add(100 * time.Millisecond)

	for id, at := range map[string]time.Time{"whole": whole, "later": later} {
		run := ledger.Run{ID: id, Profile: "peak", StartedAt: at, FinishedAt: at}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].ID != "later" || runs[1].ID != "whole" {
		t.Fatalf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[1].StartedAt.Equal(whole) || !runs[0].StartedAt.Equal(later) {
		t.Fatalf("timestamps = %v, %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Record(context.Background(), ledger.Run{Profile: "peak"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestRecordDuplicateIDFails(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	run := ledger.Run{ID: "dup", Profile: "peak", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := store.Record(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, run); err == nil {
		t.Fatal("expected error for duplicate run id")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, ledger.Run{ID: "a", Profile: "peak", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := ledger.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs after reopen", len(runs))
	}
}

func TestSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := ledger.Open(context.Background(), path); !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
