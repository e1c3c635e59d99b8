package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns a comparison key for s: trimmed, case folded and with
// combining marks removed, so "Competición", "COMPETICION" and
// " competicion " all fold to "competicion".
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// EqualFold reports whether a and b are equal under Fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
