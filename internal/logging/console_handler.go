package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one header line per record followed by indented
// detail lines:
//
//	2025-01-05 10:31:02 INFO [ingest] Performance · J15_Sevilla_vs_Betis › rendimiento_1.xlsx › Físico – sheet processed
//	    - Rows: 22
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	// preset holds attributes from WithAttrs, already flattened.
	preset    []field
	prefix    string
}

type field struct {
	key   string
	value slog.Value
}

// header collects the attributes rendered on the first line.
type header struct {
	component, profile       string
	folder, file, sheet, tgt string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, len(h.preset), len(h.preset)+r.NumAttrs())
	copy(fields, h.preset)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})

	var hdr header
	details := make([]field, 0, len(fields))
	for _, f := range fields {
		if hdr.take(f) {
			continue
		}
		details = upsert(details, f)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var buf bytes.Buffer
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(r.Level))
	if hdr.component != "" {
		buf.WriteString(" [" + hdr.component + "]")
	}
	if subject := hdr.subject(); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(msg)
	if h.addSource {
		if src := r.Source(); src != nil && src.File != "" {
			buf.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	buf.WriteByte('\n')
	for _, f := range details {
		buf.WriteString("    - ")
		buf.WriteString(displayLabel(f.key))
		buf.WriteString(": ")
		buf.WriteString(formatValue(f.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// take stores header attributes (first value wins) and reports whether f
// belongs in the header rather than the detail lines. run_id is dropped from
// console output; the JSON handler keeps it.
func (hdr *header) take(f field) bool {
	var slot *string
	switch f.key {
	case FieldComponent:
		slot = &hdr.component
	case FieldProfile:
		slot = &hdr.profile
	case FieldFolder:
		slot = &hdr.folder
	case FieldFile:
		slot = &hdr.file
	case FieldSheet:
		slot = &hdr.sheet
	case FieldTarget:
		slot = &hdr.tgt
	case FieldRunID:
		return true
	default:
		return false
	}
	if *slot == "" {
		*slot = attrString(f.value)
	}
	return true
}

// subject is "Profile · place", where place is the archive target or the
// folder › file › sheet breadcrumb.
func (hdr header) subject() string {
	place := hdr.tgt
	if place == "" {
		var crumbs []string
		for _, c := range []string{hdr.folder, hdr.file, hdr.sheet} {
			if c = strings.TrimSpace(c); c != "" {
				crumbs = append(crumbs, c)
			}
		}
		place = strings.Join(crumbs, " › ")
	}
	profile := strings.TrimSpace(hdr.profile)
	switch {
	case profile == "":
		return place
	case place == "":
		return capitalizeASCII(profile)
	default:
		return capitalizeASCII(profile) + " · " + place
	}
}

// upsert appends f, or replaces the value of an earlier field with the same
// key in place.
func upsert(fields []field, f field) []field {
	if f.key == "" {
		return fields
	}
	for i := range fields {
		if fields[i].key == f.key {
			fields[i].value = f.value
			return fields
		}
	}
	return append(fields, f)
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendField(dst, inner, ga)
		}
		return dst
	}
	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

func displayLabel(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	if value == "" || value[0] < 'a' || value[0] > 'z' {
		return value
	}
	return string(value[0]-('a'-'A')) + value[1:]
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = make([]field, len(h.preset), len(h.preset)+len(attrs))
	copy(clone.preset, h.preset)
	for _, a := range attrs {
		clone.preset = appendField(clone.preset, h.prefix, a)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
