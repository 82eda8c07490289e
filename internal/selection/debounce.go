// Package selection turns bursts of selection-change events into single
// detection passes.
package selection

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is how long the selection must settle before detection runs.
const DefaultDelay = 100 * time.Millisecond

// Debouncer runs fn once the triggers stop for delay. Each Trigger cancels
// both the pending timer and the context of a pass that is already running,
// so a superseded pass can stop early.
type Debouncer struct {
	delay time.Duration
	fn    func(ctx context.Context)

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewDebouncer returns a debouncer. A non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration, fn func(ctx context.Context)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Delay returns the settle time.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules a pass, superseding any pending or running one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.supersede()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		if ctx.Err() != nil {
			return
		}
		d.fn(ctx)
	})
}

// supersede must be called with mu held.
func (d *Debouncer) supersede() {
	if d.timer != nil && d.timer.Stop() {
		// the callback will never run, so it cannot call Done itself
		d.wg.Done()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.timer, d.cancel = nil, nil
}

// Stop cancels pending work and waits for a running pass to return. Later
// triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.supersede()
	d.mu.Unlock()
	d.wg.Wait()
}
