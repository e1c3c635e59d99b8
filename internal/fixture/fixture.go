// Package fixture derives matchday and fixture identifiers from match folder
// names such as "J15_EquipoA_vs_EquipoB".
package fixture

import "strings"

// Info carries the identifiers encoded in a folder name. Nil fields mean the
// name did not have the expected shape.
type Info struct {
	Matchday *string
	Fixture  *string
}

// MatchdayText returns the matchday or "" when absent.
func (i Info) MatchdayText() string {
	if i.Matchday == nil {
		return ""
	}
	return *i.Matchday
}

// FixtureText returns the fixture or "" when absent.
func (i Info) FixtureText() string {
	if i.Fixture == nil {
		return ""
	}
	return *i.Fixture
}

// Parse splits a folder name. The matchday is the leading "j"/"J" plus the
// digits that follow it, cut at the first non-digit after position 1; a name
// with no such terminator is taken whole. The fixture is everything after the
// first underscore.
func Parse(name string) Info {
	var info Info

	if len(name) > 1 && (name[0] == 'j' || name[0] == 'J') {
		matchday := name
		for i := 1; i < len(name); i++ {
			if name[i] < '0' || name[i] > '9' {
				matchday = name[:i]
				break
			}
		}
		info.Matchday = &matchday
	}

	if idx := strings.IndexByte(name, '_'); idx >= 0 {
		fixture := name[idx+1:]
		info.Fixture = &fixture
	}

	return info
}
