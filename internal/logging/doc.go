// Package logging assembles structured slog loggers and formatting helpers used
// by the matchdata commands.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag every line of an ingestion run with its run ID and
// report profile. NewNop returns a logger for tests and wiring code that has
// nowhere to write.
package logging
