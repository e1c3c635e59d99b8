package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func reportTypes(d Discovery) []string {
	var out []string
	for _, in := range d.Inputs {
		out = append(out, in.Name+"="+in.ReportType)
	}
	return out
}

func TestPerformanceDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Rendimiento_1_J15.xlsx", "rendimiento_2_J15.xlsx", "rendimiento_1_old.xls", "notas.txt")
	if err := os.Mkdir(filepath.Join(dir, "rendimiento_1_dir.xlsx"), 0o755); err != nil {
		t.Fatal(err)
	}

	d, err := Performance().Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Rendimiento_1_J15.xlsx=rendimiento_1", "rendimiento_2_J15.xlsx=rendimiento_2"}
	if got := reportTypes(d); !reflect.DeepEqual(got, want) {
		t.Fatalf("inputs = %v, want %v", got, want)
	}
	if !d.Complete() || d.Fallback {
		t.Fatalf("discovery = %+v", d)
	}
	if d.Inputs[0].Path != filepath.Join(dir, "Rendimiento_1_J15.xlsx") {
		t.Fatalf("path = %q", d.Inputs[0].Path)
	}
}

func TestPerformanceDiscoverIgnoresUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "rendimiento_1.XLSX")
	d, err := Performance().Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Inputs) != 0 {
		t.Fatalf("inputs = %v", reportTypes(d))
	}
}

func TestPeakDiscoverPrimaryAndFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "maxima_exigencia_2.xlsx", "otro_xlsx_a.xlsx")
	d, err := PeakDemand().Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := reportTypes(d); !reflect.DeepEqual(got, []string{"maxima_exigencia_2.xlsx=maxima_exigencia_2"}) {
		t.Fatalf("primary inputs = %v", got)
	}
	if d.Complete() {
		t.Fatal("one of two files must not be complete")
	}

	dir = t.TempDir()
	touch(t, dir, "otro_xlsx_b.xlsx", "otro_xlsx_a.xlsx", "otro_xlsx_c.xlsx")
	d, err = PeakDemand().Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"otro_xlsx_a.xlsx=otro_xlsx_1", "otro_xlsx_b.xlsx=otro_xlsx_2"}
	if got := reportTypes(d); !reflect.DeepEqual(got, want) {
		t.Fatalf("fallback inputs = %v, want %v", got, want)
	}
	if !d.Fallback {
		t.Fatal("expected fallback flag")
	}
}

func TestPerformanceHasNoFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "otro_xlsx_a.xlsx")
	d, err := Performance().Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Inputs) != 0 || len(d.Workbooks) != 1 {
		t.Fatalf("discovery = %+v", d)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Performance().Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error")
	}
}

func TestArchiveFile(t *testing.T) {
	p := Performance()
	tests := map[string]string{
		"Físico":      "rendimiento_fisico.parquet",
		"Fisico":      "rendimiento_fisico.parquet",
		" FÍSICO ":    "rendimiento_fisico.parquet",
		"5":           "rendimiento_5.parquet",
		"10":          "rendimiento_10.parquet",
		"15":          "rendimiento_15.parquet",
		"Resumen 20'": "rendimiento_resumen_20_.parquet",
		"Velocidad+":  "rendimiento_velocidad_.parquet",
	}
	for sheet, want := range tests {
		if got := p.ArchiveFile(sheet); got != want {
			t.Errorf("ArchiveFile(%q) = %q, want %q", sheet, got, want)
		}
	}

	if got := PeakDemand().ArchiveFile(""); got != "maxima_exigencia.parquet" {
		t.Fatalf("peak archive = %q", got)
	}
}

func TestSheetsAndTargets(t *testing.T) {
	names := []string{"Físico", "5", "10"}
	if got := Performance().Sheets(names); !reflect.DeepEqual(got, names) {
		t.Fatalf("performance sheets = %v", got)
	}
	if got := PeakDemand().Sheets(names); !reflect.DeepEqual(got, []string{"Físico"}) {
		t.Fatalf("peak sheets = %v", got)
	}
	if got := PeakDemand().Sheets(nil); len(got) != 0 {
		t.Fatalf("peak sheets of empty workbook = %v", got)
	}
	if Performance().Target("5") != "5" || PeakDemand().Target("Hoja1") != "" {
		t.Fatal("unexpected targets")
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"performance", "PEAK", " peak "} {
		if _, err := Lookup(name); err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("all"); err == nil {
		t.Fatal("expected error for all")
	}
}

func TestMetadataColumns(t *testing.T) {
	want := []string{"equipo", "liga", "temporada", "jornada", "partido", "tipo_reporte", "archivo_origen", "id_jugador"}
	if got := PeakDemand().MetadataColumns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("peak metadata = %v", got)
	}
	if got := len(Performance().Key); got != 9 {
		t.Fatalf("performance key has %d fields", got)
	}
}
