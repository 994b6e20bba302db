package diag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "charm.land/log/v2"
)

// Level is a diagnostic log level name.
type Level string

const (
	// LevelError shows only errors.
	LevelError Level = "error"
	// LevelWarn shows warnings and errors.
	LevelWarn Level = "warn"
	// LevelInfo shows informational messages and above.
	LevelInfo Level = "info"
	// LevelDebug shows everything.
	LevelDebug Level = "debug"
)

// Format is a diagnostic output format.
type Format string

const (
	// FormatJSON outputs one JSON object per record.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logfmt key=value records.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs human-readable records styled by charm log.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

var (
	levels  = []Level{LevelError, LevelWarn, LevelInfo, LevelDebug}
	formats = []Format{FormatText, FormatJSON, FormatLogfmt}
)

// GetAllLevelStrings returns all valid level strings.
func GetAllLevelStrings() []string {
	s := make([]string, 0, len(levels))
	for _, l := range levels {
		s = append(s, string(l))
	}

	return s
}

// GetAllFormatStrings returns all valid format strings.
func GetAllFormatStrings() []string {
	s := make([]string, 0, len(formats))
	for _, f := range formats {
		s = append(s, string(f))
	}

	return s
}

// ParseLevel parses a level string. "warning" is accepted as [LevelWarn].
func ParseLevel(level string) (Level, error) {
	switch l := Level(strings.ToLower(level)); l {
	case LevelError, LevelWarn, LevelInfo, LevelDebug:
		return l, nil
	case "warning":
		return LevelWarn, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// ParseFormat parses a format string.
func ParseFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// SlogLevel returns the [slog.Level] for l. Unknown levels map to
// [slog.LevelInfo].
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

// NewHandlerFromStrings parses level and format, then delegates to
// [NewHandler].
func NewHandlerFromStrings(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	f, err := ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, f), nil
}

// NewHandler creates a [slog.Handler] writing to w at the given level and
// format. Unknown formats fall back to [FormatText].
func NewHandler(w io.Writer, level Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     level.SlogLevel(),
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level.SlogLevel()),
		ReportTimestamp: true,
		Prefix:          "taglog",
	})
}
