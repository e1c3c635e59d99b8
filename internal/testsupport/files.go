package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a generated workbook. Rows are written from A1
// down; an empty row leaves a blank line.
type Sheet struct {
	Name string
	Rows [][]any
}

// PerformanceSheet builds a physical-performance report sheet: a title cell,
// a blank row, the "Id Jugador" header and two player rows.
func PerformanceSheet(name, title string) Sheet {
	return Sheet{Name: name, Rows: [][]any{
		{title},
		{},
		{"Id Jugador", "Dorsal", "Distancia"},
		{1001, 7, 10234.5},
		{1002, 9, 9800},
	}}
}

// WriteWorkbook saves the sheets, in order, as an .xlsx file at path.
func WriteWorkbook(t testing.TB, path string, sheets ...Sheet) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("add sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				t.Fatalf("write %s!%s: %v", s.Name, cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}
