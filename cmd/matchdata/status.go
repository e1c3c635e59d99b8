package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusMissing
)

// statusStyles maps each kind to its bracketed label and ANSI colour.
var statusStyles = [...]struct {
	label string
	color string
}{
	statusInfo:    {"INFO", "\x1b[34m"},
	statusOK:      {"OK", "\x1b[32m"},
	statusWarn:    {"WARN", "\x1b[33m"},
	statusMissing: {"MISSING", "\x1b[31m"},
}

const (
	ansiReset   = "\x1b[0m"
	folderWidth = 28
)

// renderStatusLine formats "  <folder padded>  [LABEL] detail".
func renderStatusLine(folder string, kind statusKind, detail string, colorize bool) string {
	style := statusStyles[kind]
	var b strings.Builder
	fmt.Fprintf(&b, "  %-*s [%s]", folderWidth, folder, style.label)
	if detail != "" {
		b.WriteString(" " + detail)
	}
	return paint(b.String(), style.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	underline := strings.Repeat("-", len(heading))
	blue := statusStyles[statusInfo].color
	return []string{paint(heading, blue, colorize), paint(underline, blue, colorize)}
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

// shouldColorize is true only for terminals, and never when NO_COLOR is set.
func shouldColorize(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
