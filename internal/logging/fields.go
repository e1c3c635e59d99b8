package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one ingestion run across all of its log lines.
	FieldRunID = "run_id"
	// FieldProfile names the report profile (performance, peak) being ingested.
	FieldProfile = "profile"
	// FieldFolder is the fixture folder currently being processed.
	FieldFolder = "folder"
	FieldFile   = "file"
	FieldSheet  = "sheet"
	// FieldTarget is the archive file a batch of records is bound for.
	FieldTarget = "target"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	profileKey
)

// WithRun tags the context with the identifiers of an ingestion run.
func WithRun(ctx context.Context, runID, profile string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if runID != "" {
		ctx = context.WithValue(ctx, runIDKey, runID)
	}
	if profile != "" {
		ctx = context.WithValue(ctx, profileKey, profile)
	}
	return ctx
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(runIDKey).(string); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if profile, ok := ctx.Value(profileKey).(string); ok {
		fields = append(fields, slog.String(FieldProfile, profile))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
