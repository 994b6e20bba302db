package log

import (
	"io"
	"slices"

	"go.jacobcolvin.com/taglog/tag"
)

// DefaultCapacity is the number of sinks a [Registry] holds unless
// configured otherwise.
const DefaultCapacity = 10

// Sink pairs a borrowed writer with the tags it should receive.
type Sink struct {
	W    io.Writer
	Mask tag.Mask
}

// Registry is an ordered, fixed-capacity list of [Sink]s.
//
// Sinks are visited in registration order. The registry never closes or
// otherwise manages the lifetime of a sink's writer. A Registry is not safe
// for concurrent use; [Dispatcher] guards its registry with a mutex.
//
// Create instances with [NewRegistry].
type Registry struct {
	sinks []Sink
}

// NewRegistry creates an empty [Registry] that holds at most n sinks.
// Values less than 1 are clamped to 1.
func NewRegistry(n int) *Registry {
	if n < 1 {
		n = 1
	}

	return &Registry{
		sinks: make([]Sink, 0, n),
	}
}

// Register appends a sink writing to w for the tags in m. It returns false,
// leaving the registry unchanged, when the registry is already full or w is
// nil.
func (r *Registry) Register(w io.Writer, m tag.Mask) bool {
	if w == nil || len(r.sinks) >= cap(r.sinks) {
		return false
	}

	r.sinks = append(r.sinks, Sink{W: w, Mask: m})

	return true
}

// Clear forgets all registered sinks without closing their writers.
// Calling Clear on an empty registry is a no-op.
func (r *Registry) Clear() {
	// Drop writer references so they can be collected.
	clear(r.sinks)

	r.sinks = r.sinks[:0]
}

// Len returns the number of registered sinks.
func (r *Registry) Len() int {
	return len(r.sinks)
}

// Cap returns the maximum number of sinks.
func (r *Registry) Cap() int {
	return cap(r.sinks)
}

// Sinks returns a copy of the registered sinks in registration order.
func (r *Registry) Sinks() []Sink {
	return slices.Clone(r.sinks)
}

// mask returns the union of every registered sink's mask.
func (r *Registry) mask() tag.Mask {
	var m tag.Mask
	for _, s := range r.sinks {
		m |= s.Mask
	}

	return m
}
