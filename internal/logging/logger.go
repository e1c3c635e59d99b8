package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"matchdata/internal/config"
)

// LogFileName is the file written inside the configured log directory.
const LogFileName = "matchdata.log"

// Options describes logger construction parameters. OutputPaths accepts
// "stdout", "stderr" or file paths; files are appended to.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New constructs a slog logger. The returned close function releases any log
// files and is safe to call more than once.
func New(opts Options) (*slog.Logger, func() error, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stdout"}
	}
	out, err := openOutputs(paths)
	if err != nil {
		return nil, nil, err
	}

	var handler slog.Handler
	if format == "json" {
		handler = newJSONHandler(out, level, addSource)
	} else {
		handler = newConsoleHandler(out, level, addSource)
	}
	return slog.New(handler), out.Close, nil
}

// NewFromConfig logs to stdout and, when a log directory is configured, to
// LogFileName inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{})
	}
	paths := []string{"stdout"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		paths = append(paths, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// outputs fans writes out to stdout/stderr and any opened log files.
type outputs struct {
	io.Writer
	files []*os.File
}

func (o *outputs) Close() error {
	var errs []error
	for _, f := range o.files {
		errs = append(errs, f.Close())
	}
	o.files = nil
	return errors.Join(errs...)
}

func openOutputs(paths []string) (*outputs, error) {
	o := &outputs{}
	seen := make(map[string]bool, len(paths))
	var writers []io.Writer
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true

		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				_ = o.Close()
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				_ = o.Close()
				return nil, fmt.Errorf("open log file %s: %w", p, err)
			}
			o.files = append(o.files, f)
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		o.Writer = os.Stdout
	case 1:
		o.Writer = writers[0]
	default:
		o.Writer = io.MultiWriter(writers...)
	}
	return o, nil
}

func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
				if a.Value.Kind() == slog.KindTime {
					a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return a
		},
	})
}
