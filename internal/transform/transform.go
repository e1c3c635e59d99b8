package transform

import (
	"errors"
	"fmt"
	"strings"

	"matchdata/internal/fixture"
	"matchdata/internal/record"
	"matchdata/internal/teamname"
	"matchdata/internal/textutil"
	"matchdata/internal/workbook"
)

var (
	// ErrNoTeam is returned when no title cell yields a team name.
	ErrNoTeam = errors.New("team name not found")
	// ErrNoHeader is returned when the "Id Jugador" header row is missing.
	ErrNoHeader = errors.New("header row not found")
)

// reservedNames are raw header names that would shadow metadata columns.
var reservedNames = []string{
	"temporada", "competicion", "liga", "jornada", "partido", "equipo",
	"season", "competition", "league", "matchday", "match", "fixture", "team",
}

// Slot identifies where a metadata column takes its value from.
type Slot int

const (
	SlotSeason Slot = iota
	SlotCompetition
	SlotMatchday
	SlotFixture
	SlotTeam
	SlotReportType
	SlotSheet
	SlotSourceFile
	SlotPlayerID
)

// MetaField is one column of the metadata suffix.
type MetaField struct {
	Name string
	Slot Slot
}

// Layout is the ordered metadata suffix appended to every record.
type Layout []MetaField

// Names returns the metadata column names in order.
func (l Layout) Names() []string {
	out := make([]string, len(l))
	for i, f := range l {
		out[i] = f.Name
	}
	return out
}

// Source carries the context of the sheet being transformed.
type Source struct {
	Season      string
	Competition string
	Fixture     fixture.Info
	ReportType  string
	FileName    string
}

// Options configures a Transformer.
type Options struct {
	Extractor teamname.Extractor
	Layout    Layout
	// NameUnnamed keeps columns with an empty header as "columna_N" (N is the
	// 1-based column index) instead of dropping them.
	NameUnnamed bool
}

// Output is the result of transforming one sheet.
type Output struct {
	Records   []record.Record
	Team      string
	HeaderRow int
	Columns   []string
	// Skipped counts data rows dropped because every data cell was empty.
	Skipped int
}

type column struct {
	name  string
	index int
}

// Transformer turns report grids into metadata-stamped records.
type Transformer struct {
	opts     Options
	reserved map[string]struct{}
}

// New builds a Transformer. Header names equal to a reserved metadata name or
// to any layout column, ignoring case and accents, are never kept as data.
func New(opts Options) *Transformer {
	reserved := make(map[string]struct{}, len(reservedNames)+len(opts.Layout))
	for _, name := range reservedNames {
		reserved[textutil.Fold(name)] = struct{}{}
	}
	for _, f := range opts.Layout {
		reserved[textutil.Fold(f.Name)] = struct{}{}
	}
	return &Transformer{opts: opts, reserved: reserved}
}

// Reserved reports whether a header name would collide with metadata.
func (t *Transformer) Reserved(name string) bool {
	_, ok := t.reserved[textutil.Fold(name)]
	return ok
}

// Sheet converts one grid into records. It fails with ErrNoTeam or
// ErrNoHeader; a sheet whose rows are all empty yields an Output without
// records and a nil error.
func (t *Transformer) Sheet(g *workbook.Grid, src Source) (Output, error) {
	match, ok := t.opts.Extractor.Find(g)
	if !ok {
		return Output{}, fmt.Errorf("sheet %q: %w", g.Name, ErrNoTeam)
	}
	headerRow, idCol, ok := workbook.FindHeader(g)
	if !ok {
		return Output{}, fmt.Errorf("sheet %q: %w", g.Name, ErrNoHeader)
	}

	columns := t.columns(g, headerRow, idCol)
	out := Output{
		Team:      match.Team,
		HeaderRow: headerRow,
		Columns:   make([]string, len(columns)),
	}
	for i, c := range columns {
		out.Columns[i] = c.name
	}

	for row := headerRow + 1; row <= g.LastRow(); row++ {
		rec := record.New(len(columns) + len(t.opts.Layout))
		empty := true
		for _, c := range columns {
			v := g.Cell(row, c.index)
			if !v.IsEmpty() {
				empty = false
			}
			rec.Set(c.name, v)
		}
		if empty {
			out.Skipped++
			continue
		}
		t.stamp(&rec, g, row, idCol, match.Team, src)
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// columns resolves the data columns to the right of the player-id column.
func (t *Transformer) columns(g *workbook.Grid, headerRow, idCol int) []column {
	seen := make(map[string]struct{})
	var out []column
	for col := idCol + 1; col <= g.LastCol(); col++ {
		name := strings.TrimSpace(g.Cell(headerRow, col).Text())
		if name == "" {
			if !t.opts.NameUnnamed {
				continue
			}
			name = fmt.Sprintf("columna_%d", col+1)
		}
		if t.Reserved(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, column{name: name, index: col})
	}
	return out
}

func (t *Transformer) stamp(rec *record.Record, g *workbook.Grid, row, idCol int, team string, src Source) {
	for _, f := range t.opts.Layout {
		var v record.Value
		switch f.Slot {
		case SlotSeason:
			v = record.String(src.Season)
		case SlotCompetition:
			v = record.String(src.Competition)
		case SlotMatchday:
			v = record.OptionalString(src.Fixture.Matchday)
		case SlotFixture:
			v = record.OptionalString(src.Fixture.Fixture)
		case SlotTeam:
			v = record.String(team)
		case SlotReportType:
			v = record.String(src.ReportType)
		case SlotSheet:
			v = record.String(g.Name)
		case SlotSourceFile:
			v = record.String(src.FileName)
		case SlotPlayerID:
			v = g.Cell(row, idCol)
		}
		rec.Set(f.Name, v)
	}
}
