package view

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDelay is the pause after the last keystroke before searching.
const DefaultSearchDelay = 500 * time.Millisecond

// Debouncer runs a remote search after input settles and guarantees
// last-request-wins: every Submit cancels the context of the previous
// request, and a result from a superseded request is never delivered.
type Debouncer[T any] struct {
	parent  context.Context
	delay   time.Duration
	fetch   func(ctx context.Context, query string) (T, error)
	deliver func(query string, result T, err error)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer returns a Debouncer. deliver is called with the debouncer's
// lock held, so it must not call Submit or Stop.
func NewDebouncer[T any](
	parent context.Context,
	delay time.Duration,
	fetch func(ctx context.Context, query string) (T, error),
	deliver func(query string, result T, err error),
) *Debouncer[T] {
	return &Debouncer[T]{parent: parent, delay: delay, fetch: fetch, deliver: deliver}
}

// Submit schedules a search for query, superseding any pending or in-flight one.
func (d *Debouncer[T]) Submit(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.gen++
	gen := d.gen
	d.stopLocked()
	d.timer = time.AfterFunc(d.delay, func() { d.run(gen, query) })
}

// Stop cancels pending and in-flight searches; later Submits are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.gen++
	d.stopLocked()
}

func (d *Debouncer[T]) run(gen uint64, query string) {
	d.mu.Lock()
	if gen != d.gen || d.closed {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.mu.Unlock()

	result, err := d.fetch(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	cancel()
	if gen != d.gen || d.closed {
		return
	}
	d.cancel = nil
	d.deliver(query, result, err)
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
