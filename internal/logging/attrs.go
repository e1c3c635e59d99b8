package logging

import (
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Folder(name string) Attr { return slog.String(FieldFolder, name) }

func File(name string) Attr { return slog.String(FieldFile, name) }

func Sheet(name string) Attr { return slog.String(FieldSheet, name) }

// Target names the archive file a batch is bound for.
func Target(file string) Attr { return slog.String(FieldTarget, file) }

func Hint(text string) Attr { return slog.String(FieldErrorHint, text) }

func Impact(text string) Attr { return slog.String(FieldImpact, text) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

const (
	defaultHint   = "inspect the source workbook"
	defaultImpact = "item skipped; run continues"
)

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Fields missing from attrs get defaults so every warning names its cause,
// its consequence and a next step.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withGuidance(attrs, eventType)
	if !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, Impact(defaultImpact))
	}
	logger.Warn(msg, attrsToArgs(attrs)...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, attrsToArgs(withGuidance(attrs, eventType))...)
}

func withGuidance(attrs []Attr, eventType string) []Attr {
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, Hint(defaultHint))
	}
	return attrs
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
