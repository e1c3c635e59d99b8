package ingest

import (
	"log/slog"

	"matchdata/internal/logging"
	"matchdata/internal/record"
	"matchdata/internal/textutil"
	"matchdata/internal/transform"
)

const previewColumns = 10

// ColumnReport describes the column set of a batch of records.
type ColumnReport struct {
	Columns         []string
	MetadataPresent []string
	MetadataMissing []string
	// Duplicates groups column names that differ only by case or accents.
	Duplicates [][]string
}

// CheckColumns collects the union of columns across records in first-seen
// order and checks it against the expected metadata columns.
func CheckColumns(records []record.Record, metadata []string) ColumnReport {
	var rep ColumnReport
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rep.Columns = append(rep.Columns, k)
		}
	}
	for _, m := range metadata {
		if _, ok := seen[m]; ok {
			rep.MetadataPresent = append(rep.MetadataPresent, m)
		} else {
			rep.MetadataMissing = append(rep.MetadataMissing, m)
		}
	}

	groups := make(map[string][]string)
	var order []string
	for _, c := range rep.Columns {
		f := textutil.Fold(c)
		if _, ok := groups[f]; !ok {
			order = append(order, f)
		}
		groups[f] = append(groups[f], c)
	}
	for _, f := range order {
		if len(groups[f]) > 1 {
			rep.Duplicates = append(rep.Duplicates, groups[f])
		}
	}
	return rep
}

func logColumns(logger *slog.Logger, archiveFile string, rep ColumnReport) {
	targetLog := logger.With(logging.Target(archiveFile))
	preview := rep.Columns
	if len(preview) > previewColumns {
		preview = preview[:previewColumns]
	}
	targetLog.Debug("column check",
		logging.Int("columns", len(rep.Columns)),
		logging.Any("first_columns", preview),
		logging.Int("metadata_present", len(rep.MetadataPresent)),
	)
	if len(rep.MetadataMissing) > 0 {
		logging.WarnWithContext(targetLog, "metadata columns missing", "metadata_missing",
			logging.Any("missing", rep.MetadataMissing),
			logging.Impact("rows archived without these columns"),
		)
	}
	for _, group := range rep.Duplicates {
		logging.WarnWithContext(targetLog, "columns differ only by case or accents", "column_duplicate",
			logging.Any("columns", group),
			logging.Impact("values split across several columns"),
		)
	}
}

type fixtureKey struct {
	matchday, fixture, reportType string
}

// fixtureCounter tallies new rows per matchday, fixture and report type in
// first-seen order.
type fixtureCounter struct {
	index  map[fixtureKey]int
	counts []FixtureCount
}

func (c *fixtureCounter) add(layout transform.Layout, records []record.Record) {
	matchdayCol := layoutColumn(layout, transform.SlotMatchday)
	fixtureCol := layoutColumn(layout, transform.SlotFixture)
	typeCol := layoutColumn(layout, transform.SlotReportType)
	if c.index == nil {
		c.index = make(map[fixtureKey]int)
	}
	for _, r := range records {
		k := fixtureKey{
			matchday:   r.FirstText(matchdayCol),
			fixture:    r.FirstText(fixtureCol),
			reportType: r.FirstText(typeCol),
		}
		pos, ok := c.index[k]
		if !ok {
			pos = len(c.counts)
			c.index[k] = pos
			c.counts = append(c.counts, FixtureCount{Matchday: k.matchday, Fixture: k.fixture, ReportType: k.reportType})
		}
		c.counts[pos].Rows++
	}
}

func layoutColumn(layout transform.Layout, slot transform.Slot) string {
	for _, f := range layout {
		if f.Slot == slot {
			return f.Name
		}
	}
	return ""
}
