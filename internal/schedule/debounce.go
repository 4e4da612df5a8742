package schedule

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of trigger calls into one delayed execution.
// Each Trigger cancels any not-yet-fired previous call and re-arms the
// delay with the latest payload; only the last call in a quiet window of
// the configured delay actually runs.
//
// This is for "user stopped typing/moving" class signals. It carries no
// concurrency guard beyond single-flight arming and no result propagation.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu    sync.Mutex
	timer Timer
}

// NewDebouncer creates a debouncer with the given quiet-window delay.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger arms fn to run after the delay, superseding any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels any pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
