package log

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Publisher is an in-memory sink that fans dispatched entries out to
// subscribers.
//
// When registered with a [Dispatcher] it receives the structured [Entry]
// through [Publisher.WriteEntry]. Raw bytes written with [Publisher.Write]
// are split into lines and delivered as entries with only Text set.
//
// Each subscriber owns a buffered channel with ring-buffer semantics: when it
// is full the oldest entry is dropped, so publishing never blocks. Safe for
// concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subscribers []*Subscription
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.bufSize = max(n, 1)
	}
}

// NewPublisher creates a [Publisher]. The default buffer size is 64.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WriteEntry delivers a copy of e to every active subscriber. It never
// fails.
func (p *Publisher) WriteEntry(e Entry) error {
	e.Text = bytes.Clone(e.Text)

	p.publish(e)

	return nil
}

// Write delivers each line in b as an [Entry] stamped with the current time.
// It always returns len(b), nil.
func (p *Publisher) Write(b []byte) (int, error) {
	now := time.Now()

	for line := range bytes.Lines(b) {
		p.publish(Entry{
			Time:    now,
			Message: string(bytes.TrimRight(line, "\n")),
			Text:    bytes.Clone(line),
		})
	}

	return len(b), nil
}

func (p *Publisher) publish(e Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	// Compact closed subscriptions and deliver in one pass.
	alive := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if sub.closed.Load() {
			close(sub.ch)
			continue
		}

		select {
		case sub.ch <- e:
		default:
			// Full: evict the oldest entry unless the reader got to it first.
			select {
			case <-sub.ch:
				sub.dropped.Add(1)
			default:
			}

			// Only publish sends, so there is room now.
			select {
			case sub.ch <- e:
			default:
			}
		}

		alive = append(alive, sub)
	}

	clear(p.subscribers[len(alive):])

	p.subscribers = alive
}

// Subscribe registers a new [Subscription]. If the Publisher is already
// closed the subscription's channel is closed immediately.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{
		ch: make(chan Entry, p.bufSize),
	}

	if p.closed {
		close(sub.ch)
		return sub
	}

	p.subscribers = append(p.subscribers, sub)

	return sub
}

// Close closes every subscription channel. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	for _, sub := range p.subscribers {
		close(sub.ch)
	}

	p.subscribers = nil

	return nil
}

// Subscription receives entries from a [Publisher].
type Subscription struct {
	ch      chan Entry
	dropped atomic.Uint64
	closed  atomic.Bool
}

// C returns the channel that delivers entries.
func (s *Subscription) C() <-chan Entry {
	return s.ch
}

// Dropped returns how many entries were discarded because the subscriber
// fell behind.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close marks the subscription as closed. The Publisher closes the channel
// on its next delivery or on [Publisher.Close]. Idempotent.
func (s *Subscription) Close() {
	s.closed.Store(true)
}
