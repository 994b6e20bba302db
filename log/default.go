package log

import (
	"sync/atomic"

	"go.jacobcolvin.com/taglog/tag"
)

// defaultDispatcher is process-wide by intent, mirroring [slog.Default]. It
// starts with no sinks, so nothing is written until the program registers
// one.
var defaultDispatcher atomic.Pointer[Dispatcher]

func init() {
	defaultDispatcher.Store(New())
}

// Default returns the default [Dispatcher] used by the package-level
// functions.
func Default() *Dispatcher {
	return defaultDispatcher.Load()
}

// SetDefault makes d the default [Dispatcher]. A nil d installs a new,
// empty one.
func SetDefault(d *Dispatcher) {
	if d == nil {
		d = New()
	}

	defaultDispatcher.Store(d)
}

// Debugf logs a DEBUG line through the default [Dispatcher].
func Debugf(format string, args ...any) { Default().logf(tag.Debug, format, args...) }

// Infof logs an INFO line through the default [Dispatcher].
func Infof(format string, args ...any) { Default().logf(tag.Info, format, args...) }

// Warnf logs a WARN line through the default [Dispatcher].
func Warnf(format string, args ...any) { Default().logf(tag.Warn, format, args...) }

// Errorf logs an ERROR line through the default [Dispatcher].
func Errorf(format string, args ...any) { Default().logf(tag.Error, format, args...) }

// Fatalf logs a FATAL line through the default [Dispatcher]. It does not
// exit the process.
func Fatalf(format string, args ...any) { Default().logf(tag.Fatal, format, args...) }
