// Package controls adapts user input to an interaction session.
//
// Clicking through query modes or toggling root repeatedly should not commit
// every intermediate state. The [Menu] keeps a tentative value per control
// while the user is clicking and commits once a [Debouncer] window passes
// without further clicks, and only when the value actually changed.
package controls

import (
	"sync"
	"time"
)

// Default debounce windows.
const (
	DefaultQueryWait = 666 * time.Millisecond
	DefaultRootWait  = 500 * time.Millisecond
)

// Timer is the part of [time.Timer] a Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches [time.AfterFunc].
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer runs the last triggered function once no trigger arrived for the
// wait duration.
//
// The zero value is not usable - use NewDebouncer.
type Debouncer struct {
	wait  time.Duration
	after AfterFunc

	mu    sync.Mutex
	timer Timer
	fn    func()
	gen   uint64
}

// NewDebouncer returns a debouncer with the given window. A nil after uses
// [time.AfterFunc].
func NewDebouncer(wait time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = realAfterFunc
	}
	return &Debouncer{wait: wait, after: after}
}

// Trigger (re)starts the window; fn replaces any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.timer = d.after(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.take()
	d.mu.Unlock()
	fn()
}

// take clears the pending state and returns the pending function.
// Callers hold d.mu.
func (d *Debouncer) take() func() {
	fn := d.fn
	d.fn = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}

// Cancel drops the pending function. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.take() != nil
}

// Flush runs the pending function now. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.take()
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a function is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}
