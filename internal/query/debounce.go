package query

import (
	"sync"
	"time"
)

// Debouncer runs at most one scheduled function, delay after the last
// Schedule call. Scheduling again replaces the pending function.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
}

// NewDebouncer returns a Debouncer with the given delay. A non-positive delay
// still defers the call to a timer goroutine.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Schedule cancels any pending call and schedules fn.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	id := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != id {
			d.mu.Unlock()
			return
		}
		run := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()
		if run != nil {
			run()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	d.pending = nil
}

// Flush runs the pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.pending
	d.stopLocked()
	d.seq++
	d.pending = nil
	d.mu.Unlock()
	if run != nil {
		run()
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
