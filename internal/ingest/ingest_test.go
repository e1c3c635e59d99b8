package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"matchdata/internal/archive"
	"matchdata/internal/ledger"
	"matchdata/internal/logging"
	"matchdata/internal/profile"
	"matchdata/internal/record"
	"matchdata/internal/testsupport"
)

type fakeRecorder struct {
	runs []ledger.Run
}

func (f *fakeRecorder) Record(_ context.Context, run ledger.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func newTestRunner(source, output string, dryRun bool, rec Recorder) *Runner {
	return NewRunner(Options{
		SourceDir:   source,
		OutputDir:   output,
		Season:      "24_25",
		Competition: "La Liga",
		DryRun:      dryRun,
	}, logging.NewNop(), rec)
}

// seedPerformance lays out one complete match folder and one empty one.
func seedPerformance(t *testing.T, source string) {
	t.Helper()
	match := filepath.Join(source, "J15_Sevilla_vs_Betis")
	testsupport.WriteWorkbook(t, filepath.Join(match, "rendimiento_1_sevilla.xlsx"),
		testsupport.PerformanceSheet("Físico", "Informe de Rendimiento Físico Sevilla FC"),
		testsupport.PerformanceSheet("5", "Informe de Rendimiento Físico Intervalos 5' Sevilla FC"),
	)
	testsupport.WriteWorkbook(t, filepath.Join(match, "rendimiento_2_betis.xlsx"),
		testsupport.PerformanceSheet("Físico", "Informe de Rendimiento Físico Real Betis"),
	)
	if err := os.MkdirAll(filepath.Join(source, "J16_Getafe_vs_Girona"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func readArchive(t *testing.T, path string) []record.Record {
	t.Helper()
	rows, err := archive.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestRunPerformanceEndToEnd(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)

	ctx := context.Background()
	store := testsupport.MustOpenLedger(t, filepath.Join(t.TempDir(), "ledger.db"))

	results, err := newTestRunner(source, output, false, store).Run(ctx, profile.Performance())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	stats := results[0]
	if stats.Folders != 2 || stats.FoldersProcessed != 1 {
		t.Fatalf("folders = %d/%d, want 2/1", stats.Folders, stats.FoldersProcessed)
	}
	if stats.FilesOK != 2 || stats.Errors != 1 {
		t.Fatalf("files ok = %d errors = %d, want 2 and 1", stats.FilesOK, stats.Errors)
	}
	if stats.NewRows != 6 {
		t.Fatalf("new rows = %d, want 6", stats.NewRows)
	}
	if len(stats.Targets) != 2 || stats.Targets[0].Name != "Físico" || stats.Targets[1].Name != "5" {
		t.Fatalf("targets = %+v", stats.Targets)
	}

	fisico := readArchive(t, filepath.Join(output, "rendimiento_fisico.parquet"))
	if len(fisico) != 4 {
		t.Fatalf("rendimiento_fisico rows = %d, want 4", len(fisico))
	}
	first := fisico[0]
	for col, want := range map[string]string{
		"Temporada":      "24_25",
		"Competicion":    "La Liga",
		"Jornada":        "J15",
		"Partido":        "Sevilla_vs_Betis",
		"Equipo":         "Sevilla FC",
		"tipo_reporte":   "rendimiento_1",
		"hoja":           "Físico",
		"archivo_origen": "rendimiento_1_sevilla.xlsx",
		"id_jugador":     "1001",
	} {
		if got := first.FirstText(col); got != want {
			t.Errorf("%s = %q, want %q", col, got, want)
		}
	}
	if got := fisico[2].FirstText("Equipo"); got != "Real Betis" {
		t.Fatalf("third row team = %q, want Real Betis", got)
	}
	if rows := readArchive(t, filepath.Join(output, "rendimiento_5.parquet")); len(rows) != 2 {
		t.Fatalf("rendimiento_5 rows = %d, want 2", len(rows))
	}

	if len(stats.Fixtures) != 2 {
		t.Fatalf("fixture counts = %+v", stats.Fixtures)
	}
	if fc := stats.Fixtures[0]; fc.Matchday != "J15" || fc.ReportType != "rendimiento_1" || fc.Rows != 4 {
		t.Fatalf("first fixture count = %+v", fc)
	}

	runs, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != stats.RunID || runs[0].NewRows != 6 || len(runs[0].Targets) != 2 {
		t.Fatalf("ledger runs = %+v", runs)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)
	ctx := context.Background()

	if _, err := newTestRunner(source, output, false, nil).Run(ctx, profile.Performance()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	path := filepath.Join(output, "rendimiento_fisico.parquet")
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	results, err := newTestRunner(source, output, false, nil).Run(ctx, profile.Performance())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	stats := results[0]
	if stats.NewRows != 0 {
		t.Fatalf("second run new rows = %d, want 0", stats.NewRows)
	}
	for _, tr := range stats.Targets {
		if tr.Written || tr.External != tr.Incoming {
			t.Fatalf("target %+v should be fully deduplicated and untouched", tr)
		}
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("archive rewritten without new rows")
	}
	if rows := readArchive(t, path); len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	source, output := t.TempDir(), filepath.Join(t.TempDir(), "out")
	seedPerformance(t, source)
	rec := &fakeRecorder{}

	results, err := newTestRunner(source, output, true, rec).Run(context.Background(), profile.Performance())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].NewRows != 6 || !results[0].DryRun {
		t.Fatalf("stats = %+v", results[0])
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("output dir created in dry run: %v", err)
	}
	if len(rec.runs) != 0 {
		t.Fatal("dry run recorded in ledger")
	}
}

func TestRunFailsWhenLocked(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)

	held, err := AcquireLock(filepath.Join(output, ".matchdata.lock"))
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer held.Release()

	_, err = newTestRunner(source, output, false, nil).Run(context.Background(), profile.Performance())
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if _, err := os.Stat(filepath.Join(output, "rendimiento_fisico.parquet")); !os.IsNotExist(err) {
		t.Fatal("archive written while locked")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(source, output, false, nil).Run(ctx, profile.Performance())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunMissingSourceDir(t *testing.T) {
	_, err := newTestRunner(filepath.Join(t.TempDir(), "nope"), t.TempDir(), false, nil).
		Run(context.Background(), profile.Performance())
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestRunSkipsSheetsWithoutTeam(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	testsupport.WriteWorkbook(t, filepath.Join(source, "J3_A_vs_B", "rendimiento_1.xlsx"),
		testsupport.PerformanceSheet("Físico", "Informe de Rendimiento Físico Osasuna"),
		testsupport.Sheet{Name: "Notas", Rows: [][]any{{"Id Jugador", "Nota"}, {1, "x"}}},
	)

	results, err := newTestRunner(source, output, false, nil).Run(context.Background(), profile.Performance())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats := results[0]
	if stats.SheetsOK != 1 || stats.SheetsSkipped != 1 {
		t.Fatalf("sheets ok/skipped = %d/%d, want 1/1", stats.SheetsOK, stats.SheetsSkipped)
	}
	// The rendimiento_2 slot is empty, which is not an error by itself.
	if stats.FilesOK != 1 || stats.Errors != 0 {
		t.Fatalf("files ok = %d errors = %d", stats.FilesOK, stats.Errors)
	}
	if _, err := os.Stat(filepath.Join(output, "rendimiento_notas.parquet")); !os.IsNotExist(err) {
		t.Fatal("skipped sheet produced an archive")
	}
}

func TestRunReplacesUnreadableArchive(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)
	path := filepath.Join(output, "rendimiento_fisico.parquet")
	if err := os.WriteFile(path, []byte("not parquet"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := newTestRunner(source, output, false, nil).Run(context.Background(), profile.Performance())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tr := results[0].Targets[0]; tr.Existing != 0 || !tr.Written {
		t.Fatalf("target = %+v", tr)
	}
	if rows := readArchive(t, path); len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
}

func TestRunPeakFallback(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	testsupport.WriteWorkbook(t, filepath.Join(source, "J20_Villarreal_vs_Celta", "otro_xlsx_export.xlsx"),
		testsupport.Sheet{Name: "Hoja1", Rows: [][]any{
			{},
			{"", "Escenarios de Máxima Villarreal CF"},
			{},
			{"Id Jugador", "", "Vel Max"},
			{2001, 12, 33.4},
			{2002, 15, 31.9},
		}},
	)

	results, err := newTestRunner(source, output, false, nil).Run(context.Background(), profile.PeakDemand())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].NewRows != 2 {
		t.Fatalf("new rows = %d, want 2", results[0].NewRows)
	}
	rows := readArchive(t, filepath.Join(output, "maxima_exigencia.parquet"))
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	r := rows[0]
	if got := r.FirstText("equipo"); got != "Villarreal CF" {
		t.Fatalf("equipo = %q", got)
	}
	if got := r.FirstText("tipo_reporte"); got != "otro_xlsx_1" {
		t.Fatalf("tipo_reporte = %q", got)
	}
	if got := r.FirstText("columna_2"); got != "12" {
		t.Fatalf("columna_2 = %q, want 12", got)
	}
	if got := r.FirstText("jornada"); got != "J20" {
		t.Fatalf("jornada = %q", got)
	}
}

func TestRunAllProfilesShareOneLock(t *testing.T) {
	source, output := t.TempDir(), t.TempDir()
	seedPerformance(t, source)

	results, err := newTestRunner(source, output, false, nil).
		Run(context.Background(), profile.All()...)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 || results[0].RunID == results[1].RunID {
		t.Fatalf("results = %+v", results)
	}
	// No peak workbooks exist, so every folder counts as an error.
	if results[1].Errors != 2 || results[1].NewRows != 0 {
		t.Fatalf("peak stats = %+v", results[1])
	}
	if lock, err := AcquireLock(filepath.Join(output, ".matchdata.lock")); err != nil {
		t.Fatalf("lock not released: %v", err)
	} else {
		_ = lock.Release()
	}
}

func TestDiagnose(t *testing.T) {
	source := t.TempDir()
	testsupport.WriteWorkbook(t, filepath.Join(source, "J1_A_vs_B", "maxima_exigencia_1.xlsx"), testsupport.Sheet{Name: "s"})
	testsupport.WriteWorkbook(t, filepath.Join(source, "J1_A_vs_B", "maxima_exigencia_2.xlsx"), testsupport.Sheet{Name: "s"})
	testsupport.WriteWorkbook(t, filepath.Join(source, "J2_C_vs_D", "maxima_exigencia_1.xlsx"), testsupport.Sheet{Name: "s"})
	testsupport.WriteWorkbook(t, filepath.Join(source, "J3_E_vs_F", "notas.xlsx"), testsupport.Sheet{Name: "s"})
	if err := os.WriteFile(filepath.Join(source, "readme.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	diag, err := Diagnose(source, profile.PeakDemand())
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if len(diag.Folders) != 3 {
		t.Fatalf("folders = %d, want 3", len(diag.Folders))
	}
	want := []FolderStatus{StatusComplete, StatusPartial, StatusMissing}
	for i, fd := range diag.Folders {
		if fd.Status != want[i] {
			t.Errorf("%s status = %s, want %s", fd.Name, fd.Status, want[i])
		}
	}
	if diag.Complete != 1 || diag.Partial != 1 || diag.Missing != 1 {
		t.Fatalf("summary = %d/%d/%d", diag.Complete, diag.Partial, diag.Missing)
	}
	if got := diag.Folders[2].Workbooks; len(got) != 1 || got[0] != "notas.xlsx" {
		t.Fatalf("workbooks = %v", got)
	}
}

func TestCheckColumns(t *testing.T) {
	a := record.New(3)
	a.Set("Distancia", record.Int(1))
	a.Set("Equipo", record.String("x"))
	b := record.New(2)
	b.Set("distancia", record.Int(2))
	b.Set("Vel Max", record.Number(3.5))

	rep := CheckColumns([]record.Record{a, b}, []string{"Equipo", "Jornada"})
	if len(rep.Columns) != 4 || rep.Columns[0] != "Distancia" || rep.Columns[3] != "Vel Max" {
		t.Fatalf("columns = %v", rep.Columns)
	}
	if len(rep.MetadataPresent) != 1 || len(rep.MetadataMissing) != 1 || rep.MetadataMissing[0] != "Jornada" {
		t.Fatalf("metadata = %v / %v", rep.MetadataPresent, rep.MetadataMissing)
	}
	if len(rep.Duplicates) != 1 || len(rep.Duplicates[0]) != 2 {
		t.Fatalf("duplicates = %v", rep.Duplicates)
	}
}
