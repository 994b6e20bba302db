package log

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/term"

	"go.jacobcolvin.com/taglog/tag"
)

// ColorMode controls whether ANSI color escapes decorate the tag and label
// fields.
type ColorMode string

const (
	// ColorNever never emits escapes.
	ColorNever ColorMode = "never"
	// ColorAlways emits escapes for every sink.
	ColorAlways ColorMode = "always"
	// ColorAuto emits escapes only for sinks attached to a terminal.
	ColorAuto ColorMode = "auto"
)

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[37m"
)

// GetAllColorStrings returns all valid color mode strings.
func GetAllColorStrings() []string {
	return []string{string(ColorAuto), string(ColorAlways), string(ColorNever)}
}

// ParseColorMode parses a color mode string.
func ParseColorMode(s string) (ColorMode, error) {
	mode := ColorMode(strings.ToLower(s))
	if slices.Contains([]ColorMode{ColorNever, ColorAlways, ColorAuto}, mode) {
		return mode, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownColorMode, s)
}

// tagColor returns the SGR escape for t.
func tagColor(t tag.Tag) string {
	switch t {
	case tag.Debug:
		return "\x1b[32m"
	case tag.Info:
		return "\x1b[36m"
	case tag.Warn:
		return "\x1b[33m"
	case tag.Error, tag.Fatal:
		return "\x1b[1;31m"
	}

	return ""
}

// fder is implemented by [*os.File] and other descriptor-backed writers.
type fder interface {
	Fd() uintptr
}

// colorize reports whether lines written to w should carry escapes.
func (m ColorMode) colorize(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorAuto:
		f, ok := w.(fder)

		return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Descriptors fit in int.
	}

	return false
}
