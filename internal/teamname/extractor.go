package teamname

import (
	"regexp"
	"strings"

	"matchdata/internal/record"
	"matchdata/internal/workbook"
)

// Match describes where and how a team name was found.
type Match struct {
	Team string
	Row  int
	Col  int
	Rule string
}

// Extractor finds the team name embedded in a report title cell.
type Extractor struct {
	Window     workbook.Window
	Rules      []Rule
	Clean      bool
	Accept     func(string) bool
	KnownClubs []string
	Fallback   []*regexp.Regexp
}

// Performance returns the extractor for physical-performance reports
// ("Informe de Rendimiento Físico ...").
func Performance() Extractor {
	return Extractor{
		Window:     workbook.Window{MaxRow: 50, MaxCol: 30},
		Rules:      performanceRules,
		Clean:      true,
		Accept:     Plausible,
		KnownClubs: knownClubs,
		Fallback:   fallbackPatterns,
	}
}

// PeakDemand returns the extractor for peak-demand reports
// ("Escenarios de Máxima ...").
func PeakDemand() Extractor {
	return Extractor{
		Window: workbook.Window{MaxRow: 30, MaxCol: 20},
		Rules:  peakDemandRules,
		Clean:  true,
		Accept: Plausible,
	}
}

// Find scans the grid row-major and returns the first acceptable team name.
// Title rules are tried on every cell before the fallback patterns get a
// second pass over the same window.
func (e Extractor) Find(g *workbook.Grid) (Match, bool) {
	var (
		found Match
		ok    bool
	)
	g.Scan(e.Window, func(row, col int, v record.Value) bool {
		if v.Kind() != record.KindString {
			return true
		}
		if m, hit := e.MatchText(v.Str()); hit {
			m.Row, m.Col = row, col
			found, ok = m, true
			return false
		}
		return true
	})
	if ok || len(e.Fallback) == 0 {
		return found, ok
	}

	g.Scan(e.Window, func(row, col int, v record.Value) bool {
		if v.Kind() != record.KindString {
			return true
		}
		text := strings.TrimSpace(v.Str())
		for _, re := range e.Fallback {
			if re.MatchString(text) {
				found, ok = Match{Team: text, Row: row, Col: col, Rule: "fallback"}, true
				return false
			}
		}
		return true
	})
	return found, ok
}

// MatchText applies the title rules and the known-club keyword rule to a
// single cell's text.
func (e Extractor) MatchText(text string) (Match, bool) {
	original := strings.TrimSpace(text)
	for _, rule := range e.Rules {
		candidate, hit := rule.Capture(original)
		if !hit {
			continue
		}
		if e.Clean {
			candidate = Clean(candidate)
		}
		if e.accept(candidate) {
			return Match{Team: candidate, Rule: rule.Name}, true
		}
	}

	if len(e.KnownClubs) == 0 {
		return Match{}, false
	}
	lower := strings.ToLower(original)
	if !strings.Contains(lower, "informe") {
		return Match{}, false
	}
	for _, club := range e.KnownClubs {
		if !strings.Contains(lower, club) {
			continue
		}
		if team := clubWords(original, club); team != "" {
			return Match{Team: team, Rule: "known-club"}, true
		}
	}
	return Match{}, false
}

func (e Extractor) accept(candidate string) bool {
	if e.Accept == nil {
		return nonEmpty(candidate)
	}
	return e.Accept(candidate)
}

// clubWords returns up to three words of text starting where the club's words
// appear in sequence. Each club word must be contained in the matching text
// word, so "Realizado" alone never anchors "real madrid".
func clubWords(text, club string) string {
	want := strings.Fields(club)
	words := strings.Fields(text)
	for i := 0; i+len(want) <= len(words); i++ {
		if !wordsContain(words[i:i+len(want)], want) {
			continue
		}
		end := min(i+max(3, len(want)), len(words))
		return strings.Join(words[i:end], " ")
	}
	return ""
}

func wordsContain(words, want []string) bool {
	for k, w := range want {
		if !strings.Contains(strings.ToLower(words[k]), w) {
			return false
		}
	}
	return true
}
