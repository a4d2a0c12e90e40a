// Package watchdog provides a feed-or-expire liveness tracker.
package watchdog

import (
	"sync/atomic"
	"time"
)

// Watchdog is fed on every sign of life and expires after Timeout.
// Feed and IsFed are safe to call from any goroutine.
type Watchdog struct {
	timeout time.Duration
	now     func() time.Time
	last    atomic.Int64 // UnixNano of the last feed, 0 if never fed
}

// New creates a Watchdog.
func New(timeout time.Duration) *Watchdog {
	return NewWithClock(timeout, time.Now)
}

// NewWithClock creates a Watchdog using a custom clock.
func NewWithClock(timeout time.Duration, now func() time.Time) *Watchdog {
	return &Watchdog{timeout: timeout, now: now}
}

// Timeout returns the expiration.
func (w *Watchdog) Timeout() time.Duration {
	return w.timeout
}

// Feed marks the watched thing alive.
func (w *Watchdog) Feed() {
	w.last.Store(w.now().UnixNano())
}

// IsFed reports whether the last feed is younger than the timeout.
func (w *Watchdog) IsFed() bool {
	last := w.last.Load()
	if last == 0 {
		return false
	}
	return w.now().UnixNano()-last < int64(w.timeout)
}

// LastFed returns the time of the last feed, zero if never fed.
func (w *Watchdog) LastFed() time.Time {
	if last := w.last.Load(); last != 0 {
		return time.Unix(0, last)
	}
	return time.Time{}
}
