package textutil

import "strings"

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// ASCII letters are lowercased, digits are kept, every other character
// (including underscores, hyphens and accented letters) becomes an
// underscore. Leading and trailing whitespace is trimmed first; the result is
// not collapsed, so "Sprint > 25" becomes "sprint___25".
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
