// Package testutil provides deterministic stand-ins for the clock, timer,
// and audio collaborators so ranking and playback tests never touch real
// time.
package testutil

import (
	"sync"
	"time"
)

// FixedClock returns a preset instant from Now, advancing only when the
// test says so. Implements event.Clock.
//
// Thread-safety: all methods may be called concurrently.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at the given instant.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the frozen instant forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set repositions the clock to an absolute instant.
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
