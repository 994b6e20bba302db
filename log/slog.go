package log

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.jacobcolvin.com/taglog/tag"
)

// TagForLevel maps a [slog.Level] onto the nearest [tag.Tag]. Levels above
// [slog.LevelError] map to [tag.Fatal] once they reach LevelError+4.
func TagForLevel(l slog.Level) tag.Tag {
	switch {
	case l < slog.LevelInfo:
		return tag.Debug
	case l < slog.LevelWarn:
		return tag.Info
	case l < slog.LevelError:
		return tag.Warn
	case l < slog.LevelError+4:
		return tag.Error
	}

	return tag.Fatal
}

// Handler returns a [slog.Handler] that routes records through d.
//
// The record's message is followed by its attributes as key=value pairs,
// with group names joined by dots. The context label is the function that
// produced the record, when the record carries a PC.
func (d *Dispatcher) Handler() slog.Handler {
	return &slogHandler{d: d}
}

type slogHandler struct {
	d      *Dispatcher
	prefix string
	attrs  []byte
}

func (h *slogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.d.Enabled(TagForLevel(l))
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	b := make([]byte, 0, len(r.Message)+len(h.attrs)+32)
	b = append(b, r.Message...)
	b = append(b, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		b = appendAttr(b, h.prefix, a)

		return true
	})

	h.d.emit(TagForLevel(r.Level), pcLabel(r.PC), "%s", b)

	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := *h
	h2.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		h2.attrs = appendAttr(h2.attrs, h.prefix, a)
	}

	return &h2
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.prefix = h.prefix + name + "."

	return &h2
}

func appendAttr(b []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return b
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			b = appendAttr(b, prefix, ga)
		}

		return b
	}

	b = append(b, ' ')
	b = append(b, prefix...)
	b = append(b, a.Key...)
	b = append(b, '=')

	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.AppendQuote(b, s)
	}

	return append(b, s...)
}
