package log

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.jacobcolvin.com/taglog/tag"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownColorMode indicates an unrecognized color mode string.
	ErrUnknownColorMode = errors.New("unknown color mode")
	// ErrRegistryFull indicates a sink could not be registered because the
	// registry is at capacity.
	ErrRegistryFull = errors.New("sink registry full")
)

// Fields selects the optional fields of a rendered line. The message and
// the trailing newline are always written.
type Fields struct {
	Date bool `json:"date" yaml:"date" jsonschema:"render the YYYY-MM-DD date"`
	Time bool `json:"time" yaml:"time" jsonschema:"render the HH:MM:SS time"`
	Tag  bool `json:"tag"  yaml:"tag"  jsonschema:"render the padded tag name"`
	Func bool `json:"func" yaml:"func" jsonschema:"render the calling function name"`
}

// DefaultFields returns [Fields] with every field enabled.
func DefaultFields() Fields {
	return Fields{Date: true, Time: true, Tag: true, Func: true}
}

// Entry is one dispatched line, handed to sinks that implement
// [EntryWriter].
type Entry struct {
	Time    time.Time
	Label   string
	Message string
	// Text is the fully rendered line including the trailing newline. It is
	// only valid for the duration of the WriteEntry call.
	Text []byte
	Tag  tag.Tag
}

// EntryWriter is implemented by sinks that want the structured [Entry]
// instead of raw bytes.
type EntryWriter interface {
	WriteEntry(e Entry) error
}

// flusher is implemented by buffered writers such as [bufio.Writer].
type flusher interface {
	Flush() error
}

// Dispatcher renders tagged lines and writes them to every registered sink
// whose mask matches the line's tag.
//
// Writes are best-effort: a failing sink never stops delivery to the sinks
// after it, and errors are never returned to the caller. Use
// [WithErrorHandler] to observe them. Safe for concurrent use.
//
// Create instances with [New].
type Dispatcher struct {
	registry *Registry
	now      func() time.Time
	onError  func(Sink, error)
	fallback []Sink
	color    ColorMode
	msg      []byte
	lines    [2][]byte
	fields   Fields
	mu       sync.Mutex
}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithFields selects which optional fields are rendered. The default is
// [DefaultFields].
func WithFields(f Fields) Option {
	return func(d *Dispatcher) {
		d.fields = f
	}
}

// WithColor sets the [ColorMode]. The default is [ColorNever].
func WithColor(m ColorMode) Option {
	return func(d *Dispatcher) {
		d.color = m
	}
}

// WithCapacity sets the maximum number of sinks. Values less than 1 are
// clamped to 1. The default is [DefaultCapacity].
func WithCapacity(n int) Option {
	return func(d *Dispatcher) {
		d.registry = NewRegistry(n)
	}
}

// WithFallback sets a writer that receives every line while no sink is
// registered. By default such lines are discarded.
func WithFallback(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.fallback = nil
		if w != nil {
			d.fallback = []Sink{{W: w, Mask: tag.All}}
		}
	}
}

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithErrorHandler sets a function called for every failed sink write or
// flush. It runs while the dispatcher is locked, so it must not log through
// the same [Dispatcher].
func WithErrorHandler(fn func(Sink, error)) Option {
	return func(d *Dispatcher) {
		d.onError = fn
	}
}

// New creates a [Dispatcher] with an empty registry.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(DefaultCapacity),
		now:      time.Now,
		color:    ColorNever,
		fields:   DefaultFields(),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Register adds a sink writing to w for the tags in m. It returns false if w
// is nil or the registry is full.
func (d *Dispatcher) Register(w io.Writer, m tag.Mask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Register(w, m)
}

// Clear forgets all registered sinks. Writers are not closed.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.registry.Clear()
}

// Len returns the number of registered sinks.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Len()
}

// Cap returns the maximum number of sinks.
func (d *Dispatcher) Cap() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Cap()
}

// Sinks returns a copy of the registered sinks in registration order.
func (d *Dispatcher) Sinks() []Sink {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Sinks()
}

// Enabled reports whether a line tagged t would reach any writer.
func (d *Dispatcher) Enabled(t tag.Tag) bool {
	if !t.Valid() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.registry.Len() == 0 {
		return len(d.fallback) > 0
	}

	return d.registry.mask().Has(t)
}

// Emit renders one line tagged t with the given context label and writes it
// to every matching sink. Lines whose tag is not exactly one defined tag
// (see [tag.Tag.Valid]) are dropped.
func (d *Dispatcher) Emit(t tag.Tag, label, format string, args ...any) {
	d.emit(t, label, format, args...)
}

// Debugf logs a DEBUG line labeled with the calling function's name.
func (d *Dispatcher) Debugf(format string, args ...any) { d.logf(tag.Debug, format, args...) }

// Infof logs an INFO line labeled with the calling function's name.
func (d *Dispatcher) Infof(format string, args ...any) { d.logf(tag.Info, format, args...) }

// Warnf logs a WARN line labeled with the calling function's name.
func (d *Dispatcher) Warnf(format string, args ...any) { d.logf(tag.Warn, format, args...) }

// Errorf logs an ERROR line labeled with the calling function's name.
func (d *Dispatcher) Errorf(format string, args ...any) { d.logf(tag.Error, format, args...) }

// Fatalf logs a FATAL line labeled with the calling function's name. It does
// not exit the process.
func (d *Dispatcher) Fatalf(format string, args ...any) { d.logf(tag.Fatal, format, args...) }

// logf must be called directly by an exported entry point so that the
// caller lookup lands on the user's frame.
func (d *Dispatcher) logf(t tag.Tag, format string, args ...any) {
	var pcs [1]uintptr

	// Skip [Callers, logf, entry point].
	runtime.Callers(3, pcs[:])

	d.emit(t, pcLabel(pcs[0]), format, args...)
}

func (d *Dispatcher) emit(t tag.Tag, label, format string, args ...any) {
	if !t.Valid() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sinks := d.registry.sinks
	if len(sinks) == 0 {
		sinks = d.fallback
	}

	now := d.now()
	rendered := [2]bool{}
	message := ""
	formatted := false

	for _, s := range sinks {
		if !s.Mask.Has(t) {
			continue
		}

		if !formatted {
			d.msg = fmt.Appendf(d.msg[:0], format, args...)
			formatted = true
		}

		i := 0
		if d.color.colorize(s.W) {
			i = 1
		}

		if !rendered[i] {
			d.lines[i] = d.render(d.lines[i][:0], now, t, label, i == 1)
			rendered[i] = true
		}

		var err error

		if ew, ok := s.W.(EntryWriter); ok {
			if message == "" {
				message = string(d.msg)
			}

			err = ew.WriteEntry(Entry{
				Time:    now,
				Tag:     t,
				Label:   label,
				Message: message,
				Text:    d.lines[i],
			})
		} else {
			_, err = s.W.Write(d.lines[i])
		}

		d.report(s, err)

		if f, ok := s.W.(flusher); ok {
			d.report(s, f.Flush())
		}
	}
}

func (d *Dispatcher) report(s Sink, err error) {
	if err != nil && d.onError != nil {
		d.onError(s, err)
	}
}

// render appends one line to b using the already formatted message.
func (d *Dispatcher) render(b []byte, now time.Time, t tag.Tag, label string, color bool) []byte {
	start := len(b)
	sep := func(b []byte) []byte {
		if len(b) > start {
			return append(b, ' ')
		}

		return b
	}

	if d.fields.Date {
		b = now.AppendFormat(b, time.DateOnly)
	}

	if d.fields.Time {
		b = sep(b)
		b = now.AppendFormat(b, time.TimeOnly)
	}

	if d.fields.Tag {
		b = sep(b)
		if color {
			b = append(b, tagColor(t)...)
			b = append(b, t.Label()...)
			b = append(b, colorReset...)
		} else {
			b = append(b, t.Label()...)
		}
	}

	if d.fields.Func {
		b = sep(b)
		if color {
			b = append(b, colorDim...)
			b = append(b, label...)
			b = append(b, ':')
			b = append(b, colorReset...)
		} else {
			b = append(b, label...)
			b = append(b, ':')
		}
	}

	b = sep(b)
	b = append(b, d.msg...)

	return append(b, '\n')
}

// pcLabel returns the bare function name for pc, e.g. "run" or
// "(*Server).Start".
func pcLabel(pc uintptr) string {
	if pc == 0 {
		return "unknown"
	}

	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	return funcLabel(frame.Function)
}

// funcLabel strips the import path and package name from a fully qualified
// function name.
func funcLabel(name string) string {
	if name == "" {
		return "unknown"
	}

	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	return name
}
