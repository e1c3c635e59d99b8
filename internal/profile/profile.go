package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"matchdata/internal/dedup"
	"matchdata/internal/teamname"
	"matchdata/internal/textutil"
	"matchdata/internal/transform"
)

// Profile names accepted on the command line.
const (
	NamePerformance = "performance"
	NamePeak        = "peak"
)

const workbookExt = ".xlsx"

// Slot is one expected input file: the file-name prefix that identifies it
// and the report type stamped on its records.
type Slot struct {
	Prefix     string
	ReportType string
}

// ArchiveName maps a sheet name to the archive file its records go to.
type ArchiveName struct {
	Sheet string
	File  string
}

// Profile describes one report family end to end: which files to pick up in
// a match folder, how to turn their sheets into records, how to key those
// records and where to archive them.
type Profile struct {
	Name string
	// Primary lists the expected input files in processing order.
	Primary []Slot
	// FallbackPrefix selects alternative files when no primary file exists;
	// they are assigned to FallbackTypes in listing order.
	FallbackPrefix string
	FallbackTypes  []string
	// AllSheets processes every sheet and accumulates per sheet name;
	// otherwise only the first sheet is read into a single flat target.
	AllSheets bool
	Transform transform.Options
	Key       dedup.Key
	// Archives is consulted for per-sheet targets, then GenericPrefix plus
	// the sanitized sheet name. FlatArchive names the single target.
	Archives      []ArchiveName
	GenericPrefix string
	FlatArchive   string
}

// Performance is the multi-sheet physical-performance profile.
func Performance() *Profile {
	return &Profile{
		Name: NamePerformance,
		Primary: []Slot{
			{Prefix: "rendimiento_1", ReportType: "rendimiento_1"},
			{Prefix: "rendimiento_2", ReportType: "rendimiento_2"},
		},
		AllSheets: true,
		Transform: transform.Options{
			Extractor: teamname.Performance(),
			Layout: transform.Layout{
				{Name: "Temporada", Slot: transform.SlotSeason},
				{Name: "Competicion", Slot: transform.SlotCompetition},
				{Name: "Jornada", Slot: transform.SlotMatchday},
				{Name: "Partido", Slot: transform.SlotFixture},
				{Name: "Equipo", Slot: transform.SlotTeam},
				{Name: "tipo_reporte", Slot: transform.SlotReportType},
				{Name: "hoja", Slot: transform.SlotSheet},
				{Name: "archivo_origen", Slot: transform.SlotSourceFile},
				{Name: "id_jugador", Slot: transform.SlotPlayerID},
			},
		},
		Key: dedup.Key{
			dedup.Field("Id Jugador", "id_jugador"),
			dedup.Field("Competicion", "liga"),
			dedup.Field("Temporada", "temporada"),
			dedup.Field("Jornada", "jornada"),
			dedup.Field("Partido", "partido"),
			dedup.Field("Equipo", "equipo"),
			dedup.Field("archivo_origen"),
			dedup.Field("tipo_reporte"),
			dedup.Field("hoja"),
		},
		Archives: []ArchiveName{
			{Sheet: "Físico", File: "rendimiento_fisico.parquet"},
			{Sheet: "Fisico", File: "rendimiento_fisico.parquet"},
			{Sheet: "5", File: "rendimiento_5.parquet"},
			{Sheet: "10", File: "rendimiento_10.parquet"},
			{Sheet: "15", File: "rendimiento_15.parquet"},
		},
		GenericPrefix: "rendimiento_",
	}
}

// PeakDemand is the single-sheet peak-demand profile.
func PeakDemand() *Profile {
	return &Profile{
		Name: NamePeak,
		Primary: []Slot{
			{Prefix: "maxima_exigencia_1", ReportType: "maxima_exigencia_1"},
			{Prefix: "maxima_exigencia_2", ReportType: "maxima_exigencia_2"},
		},
		FallbackPrefix: "otro_xlsx",
		FallbackTypes:  []string{"otro_xlsx_1", "otro_xlsx_2"},
		Transform: transform.Options{
			Extractor: teamname.PeakDemand(),
			Layout: transform.Layout{
				{Name: "equipo", Slot: transform.SlotTeam},
				{Name: "liga", Slot: transform.SlotCompetition},
				{Name: "temporada", Slot: transform.SlotSeason},
				{Name: "jornada", Slot: transform.SlotMatchday},
				{Name: "partido", Slot: transform.SlotFixture},
				{Name: "tipo_reporte", Slot: transform.SlotReportType},
				{Name: "archivo_origen", Slot: transform.SlotSourceFile},
				{Name: "id_jugador", Slot: transform.SlotPlayerID},
			},
			NameUnnamed: true,
		},
		Key: dedup.Key{
			dedup.Field("Id Jugador", "id_jugador"),
			dedup.Field("Competicion", "liga"),
			dedup.Field("Temporada", "temporada"),
			dedup.Field("Jornada", "jornada"),
			dedup.Field("Partido", "partido"),
			dedup.Field("Equipo", "equipo"),
			dedup.Field("archivo_origen"),
			dedup.Field("tipo_reporte"),
		},
		FlatArchive: "maxima_exigencia.parquet",
	}
}

// All returns every profile in the order "ingest all" runs them.
func All() []*Profile {
	return []*Profile{Performance(), PeakDemand()}
}

// Lookup resolves a profile by name; "all" is handled by callers.
func Lookup(name string) (*Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NamePerformance:
		return Performance(), nil
	case NamePeak:
		return PeakDemand(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q (want %s or %s)", name, NamePerformance, NamePeak)
	}
}

// Sheets picks the sheets to process from a workbook's sheet list.
func (p *Profile) Sheets(names []string) []string {
	if p.AllSheets || len(names) == 0 {
		return names
	}
	return names[:1]
}

// Target returns the accumulation key for records read from sheet.
func (p *Profile) Target(sheet string) string {
	if p.AllSheets {
		return sheet
	}
	return ""
}

// ArchiveFile resolves the archive file name for an accumulation target.
func (p *Profile) ArchiveFile(target string) string {
	if p.FlatArchive != "" {
		return p.FlatArchive
	}
	name := strings.TrimSpace(target)
	for _, a := range p.Archives {
		if a.Sheet == name {
			return a.File
		}
	}
	for _, a := range p.Archives {
		if strings.EqualFold(a.Sheet, name) {
			return a.File
		}
	}
	return p.GenericPrefix + textutil.SanitizeToken(name) + ".parquet"
}

// MetadataColumns lists the metadata suffix column names.
func (p *Profile) MetadataColumns() []string {
	return p.Transform.Layout.Names()
}

// Input is one workbook selected for processing.
type Input struct {
	Path       string
	Name       string
	ReportType string
}

// Discovery is the outcome of looking for a profile's inputs in a folder.
type Discovery struct {
	Inputs   []Input
	Expected int
	Fallback bool
	// Workbooks lists every .xlsx file seen, for diagnostics.
	Workbooks []string
}

// Complete reports whether every expected input was found.
func (d Discovery) Complete() bool {
	return len(d.Inputs) >= d.Expected
}

// Discover lists dir and selects the profile's input workbooks. The first
// file in listing order whose lower-cased name starts with a slot prefix
// fills that slot. When no primary file exists the fallback prefix is tried.
func (p *Profile) Discover(dir string) (Discovery, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Discovery{}, fmt.Errorf("list %s: %w", dir, err)
	}
	var workbooks []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), workbookExt) {
			continue
		}
		workbooks = append(workbooks, e.Name())
	}

	d := Discovery{Expected: len(p.Primary), Workbooks: workbooks}
	for _, slot := range p.Primary {
		if name, ok := firstWithPrefix(workbooks, slot.Prefix); ok {
			d.Inputs = append(d.Inputs, Input{Path: filepath.Join(dir, name), Name: name, ReportType: slot.ReportType})
		}
	}
	if len(d.Inputs) > 0 || p.FallbackPrefix == "" {
		return d, nil
	}

	var alt []string
	for _, name := range workbooks {
		if strings.HasPrefix(strings.ToLower(name), p.FallbackPrefix) {
			alt = append(alt, name)
		}
	}
	for i, name := range alt {
		if i >= len(p.FallbackTypes) {
			break
		}
		d.Inputs = append(d.Inputs, Input{Path: filepath.Join(dir, name), Name: name, ReportType: p.FallbackTypes[i]})
		d.Fallback = true
	}
	return d, nil
}

func firstWithPrefix(names []string, prefix string) (string, bool) {
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			return name, true
		}
	}
	return "", false
}
