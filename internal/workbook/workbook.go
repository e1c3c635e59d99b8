package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"matchdata/internal/record"
)

// Workbook is an opened .xlsx file.
type Workbook struct {
	path string
	file *excelize.File
}

// Open parses the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// Close releases the underlying file handles.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet materialises a sheet as a typed grid. Raw cell values are used so
// number formats never turn numbers into display strings.
func (w *Workbook) Sheet(name string) (*Grid, error) {
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	out := make([][]record.Value, len(rows))
	for r, row := range rows {
		cells := make([]record.Value, len(row))
		for c, raw := range row {
			if raw == "" {
				cells[c] = record.Null()
				continue
			}
			cells[c] = w.typedCell(name, r, c, raw)
		}
		out[r] = cells
	}
	return NewGrid(name, out), nil
}

func (w *Workbook) typedCell(sheet string, row, col int, raw string) record.Value {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return record.ParseCell(raw)
	}
	cellType, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return record.ParseCell(raw)
	}
	switch cellType {
	case excelize.CellTypeBool:
		return record.Bool(raw == "1" || raw == "TRUE" || raw == "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeDate, excelize.CellTypeError:
		return record.String(raw)
	default:
		return record.ParseCell(raw)
	}
}
