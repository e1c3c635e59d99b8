package workbook

import (
	"strings"

	"matchdata/internal/record"
)

// HeaderLabel is the sentinel text of the first header cell in every report.
const HeaderLabel = "Id Jugador"

const (
	headerScanRows = 20
	headerScanCols = 10
)

// Grid is one sheet materialised as rows of typed cells. Rows may have
// different lengths; missing cells read as Null.
type Grid struct {
	Name string
	Rows [][]record.Value
}

// NewGrid wraps already typed rows.
func NewGrid(name string, rows [][]record.Value) *Grid {
	return &Grid{Name: name, Rows: rows}
}

// GridFromText builds a grid from raw cell text using record.ParseCell.
func GridFromText(name string, rows [][]string) *Grid {
	out := make([][]record.Value, len(rows))
	for r, row := range rows {
		cells := make([]record.Value, len(row))
		for c, raw := range row {
			cells[c] = record.ParseCell(raw)
		}
		out[r] = cells
	}
	return NewGrid(name, out)
}

// LastRow returns the zero-based index of the last row, or -1 when empty.
func (g *Grid) LastRow() int {
	return len(g.Rows) - 1
}

// LastCol returns the zero-based index of the widest row's last column, or -1.
func (g *Grid) LastCol() int {
	last := -1
	for _, row := range g.Rows {
		if len(row)-1 > last {
			last = len(row) - 1
		}
	}
	return last
}

// Cell returns the value at (row, col), Null when out of range.
func (g *Grid) Cell(row, col int) record.Value {
	if row < 0 || row >= len(g.Rows) {
		return record.Null()
	}
	cells := g.Rows[row]
	if col < 0 || col >= len(cells) {
		return record.Null()
	}
	return cells[col]
}

// Window limits a row-major scan to rows 0..min(MaxRow, last) and
// columns 0..min(MaxCol, last).
type Window struct {
	MaxRow int
	MaxCol int
}

// Scan visits cells inside the window in row-major order until fn returns
// false.
func (g *Grid) Scan(w Window, fn func(row, col int, v record.Value) bool) {
	lastRow := min(w.MaxRow, g.LastRow())
	lastCol := min(w.MaxCol, g.LastCol())
	for r := 0; r <= lastRow; r++ {
		for c := 0; c <= lastCol; c++ {
			if !fn(r, c, g.Cell(r, c)) {
				return
			}
		}
	}
}

// FindHeaderRow returns the first row, within the top-left 21x11 window,
// holding a cell whose trimmed text equals HeaderLabel.
func FindHeaderRow(g *Grid) (int, bool) {
	row, _, ok := FindHeader(g)
	return row, ok
}

// FindHeader is FindHeaderRow that also reports the sentinel's column.
func FindHeader(g *Grid) (row, col int, ok bool) {
	g.Scan(Window{MaxRow: headerScanRows, MaxCol: headerScanCols}, func(r, c int, v record.Value) bool {
		if v.IsEmpty() {
			return true
		}
		if strings.TrimSpace(v.Text()) == HeaderLabel {
			row, col, ok = r, c, true
			return false
		}
		return true
	})
	return row, col, ok
}
