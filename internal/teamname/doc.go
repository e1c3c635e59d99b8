// Package teamname extracts the team name from report title cells.
//
// Extraction is a table of ordered regular-expression rules, each capturing
// the trailing team name after a fixed report title phrase. Captures go
// through a cleanup chain and a plausibility check; rejected captures fall
// through to the next rule, then to a known-club keyword rule, and finally to
// a second pass looking for club-like cells ("FC ...", "... CF").
package teamname
