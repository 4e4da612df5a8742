package schedule

import (
	"sync"
	"time"
)

// Result carries the outcome of a rate-limited unit of work to its waiters.
type Result struct {
	Value any
	Err   error
}

// RateLimiter enforces a minimum interval between effectful executions
// while always honoring the most recent request. A call inside the closed
// window supersedes any previously armed deferred execution
// (last-writer-wins); the latest payload runs once the window reopens.
// Unlike a leading-edge throttle, the trailing request is never dropped.
//
// Calls to different limiter instances are fully independent.
type RateLimiter struct {
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	hasRun  bool
	last    time.Time
	timer   Timer
	pending func() (any, error)
	waiters []chan Result
}

// NewRateLimiter creates a limiter with the given minimum interval.
func NewRateLimiter(clock Clock, interval time.Duration) *RateLimiter {
	return &RateLimiter{clock: clock, interval: interval}
}

// Do runs fn immediately if the window since the last actual execution is
// open, otherwise arms (or re-arms) a single deferred execution of fn for
// the remaining wait. A deferred execution fires at the window edge and
// counts as a real execution, restarting the interval; a call landing
// inside the window therefore still produces a run of its own rather than
// folding into the previous one.
func (l *RateLimiter) Do(fn func()) {
	l.execute(func() (any, error) {
		fn()
		return nil, nil
	}, nil)
}

// DoAsync is Do with result propagation. The returned channel settles with
// the outcome of whichever unit of work actually ran: callers whose payload
// was superseded merge into the surviving call and receive its result.
// Channels belonging to a Cancel'ed pending execution never settle.
func (l *RateLimiter) DoAsync(fn func() (any, error)) <-chan Result {
	ch := make(chan Result, 1)
	l.execute(fn, ch)
	return ch
}

// Cancel discards any armed deferred execution without running it. The
// limiter stays quiescent until Do or DoAsync is called again.
func (l *RateLimiter) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.pending = nil
	l.waiters = nil
}

func (l *RateLimiter) execute(fn func() (any, error), waiter chan Result) {
	l.mu.Lock()
	now := l.clock.Now()

	if !l.hasRun || now.Sub(l.last) >= l.interval {
		// Window open: run now. Any armed execution is superseded by this
		// newer request, and its waiters merge into this run.
		if l.timer != nil {
			l.timer.Stop()
			l.timer = nil
		}
		l.pending = nil
		l.hasRun = true
		l.last = now
		waiters := l.waiters
		l.waiters = nil
		if waiter != nil {
			waiters = append(waiters, waiter)
		}
		l.mu.Unlock()

		value, err := fn()
		deliver(waiters, Result{Value: value, Err: err})
		return
	}

	// Window closed: replace the pending payload and re-arm for the
	// remaining wait. At most one deferred execution is ever outstanding.
	l.pending = fn
	if waiter != nil {
		l.waiters = append(l.waiters, waiter)
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = l.clock.AfterFunc(l.interval-now.Sub(l.last), l.fire)
	l.mu.Unlock()
}

func (l *RateLimiter) fire() {
	l.mu.Lock()
	fn := l.pending
	l.pending = nil
	l.timer = nil
	if fn == nil {
		// Cancel'ed between arming and firing.
		l.mu.Unlock()
		return
	}
	l.last = l.clock.Now()
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	value, err := fn()
	deliver(waiters, Result{Value: value, Err: err})
}

func deliver(waiters []chan Result, r Result) {
	for _, ch := range waiters {
		ch <- r
	}
}
