package async

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single callback invocation:
// each Trigger supersedes the previous one, and the callback runs only
// after the window has elapsed without a newer trigger. Stop cancels any
// pending invocation and must be called on scope exit so no timer leaks
// against torn-down state.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer builds a debouncer with the given coalescing window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn after the window, cancelling any prior pending fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending invocation. The debouncer accepts no further
// triggers afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
