package teamname

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"matchdata/internal/textutil"
)

// Rule pairs a compiled pattern capturing the team name in group 1 with
// prefixes that disqualify the capture. Rules are evaluated in order by
// [Extractor]; the first rule whose cleaned capture is acceptable wins.
type Rule struct {
	Name           string
	Pattern        *regexp.Regexp
	RejectPrefixes []string
}

// Capture applies the rule to a cell's text and returns the trimmed capture.
func (r Rule) Capture(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	captured := strings.TrimSpace(m[1])
	folded := textutil.Fold(captured)
	for _, prefix := range r.RejectPrefixes {
		if strings.HasPrefix(folded, prefix) {
			return "", false
		}
	}
	return captured, true
}

// --- Performance report title rules (order matters) ---

var performanceRules = []Rule{
	{
		Name:    "physical-intervals",
		Pattern: regexp.MustCompile(`(?i)informe\s+de\s+rendimiento\s+f[ií]sico\s+intervalos\s+\d+['´’]\s+(.+)`),
	},
	{
		Name:           "physical",
		Pattern:        regexp.MustCompile(`(?i)informe\s+de\s+rendimiento\s+f[ií]sico\s+(.+)`),
		RejectPrefixes: []string{"intervalos"},
	},
	{
		Name:    "intervals",
		Pattern: regexp.MustCompile(`(?i)informe\s+de\s+rendimiento\s+intervalos\s+\d+['´’]\s+(.+)`),
	},
	{
		Name:           "plain",
		Pattern:        regexp.MustCompile(`(?i)informe\s+de\s+rendimiento\s+(.+)`),
		RejectPrefixes: []string{"fisico", "intervalos"},
	},
	{
		Name:    "generic",
		Pattern: regexp.MustCompile(`(?i)informe\s+de\s+rendimiento\s+(.+)`),
	},
}

var peakDemandRules = []Rule{
	{
		Name:    "peak-demand",
		Pattern: regexp.MustCompile(`(?i)escenarios\s+de\s+m[aá]xima\s+(.+)`),
	},
}

// knownClubs feeds the keyword rule applied to "informe" cells that no title
// rule could resolve.
var knownClubs = []string{
	"barcelona", "real madrid", "atletico", "sevilla", "valencia", "villarreal",
	"real sociedad", "athletic", "betis", "girona", "getafe", "osasuna",
	"rayo vallecano", "celta", "mallorca", "las palmas", "cadiz", "espanyol",
	"valladolid", "almeria", "elche",
}

// fallbackPatterns are tried on every cell in a second pass when no title
// cell was found.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(FC|CF|Real|Athletic|Rayo|UD)\s+\w+`),
	regexp.MustCompile(`(?i)\w+\s+(FC|CF|UD)$`),
}

// --- Cleanup chain ---

var (
	reOpponent   = regexp.MustCompile(`(?i)\s*(vs\.?|contra|v\.?)\s+.*`)
	reHyphenTail = regexp.MustCompile(`\s*-\s*.*`)
	reParens     = regexp.MustCompile(`\s*\(.*\)`)
	reBrackets   = regexp.MustCompile(`\s*\[.*\]`)
	reMatchInfo  = regexp.MustCompile(`(?i)\s+(jornada|partido|fecha|temporada)\s+.*`)
)

// Clean strips opponent, hyphen suffix, bracketed notes and match context
// from a captured title fragment.
func Clean(candidate string) string {
	candidate = removeFirst(reOpponent, candidate)
	candidate = removeFirst(reHyphenTail, candidate)
	candidate = reParens.ReplaceAllString(candidate, "")
	candidate = reBrackets.ReplaceAllString(candidate, "")
	candidate = removeFirst(reMatchInfo, candidate)
	return candidate
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// Plausible reports whether a cleaned candidate looks like a team name:
// between 3 and 49 characters and not purely numeric.
func Plausible(candidate string) bool {
	n := utf8.RuneCountInString(candidate)
	return n > 2 && n < 50 && !textutil.IsDigits(candidate)
}

func nonEmpty(candidate string) bool {
	return strings.TrimSpace(candidate) != ""
}
