// Package main hosts the matchdata CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger, and
// hands off to internal/ingest for runs and diagnostics and to
// internal/ledger for run history. Rendering (tables, status lines, colour)
// stays here.
package main
