// Package guard tracks failed unlock attempts and enforces lockout.
// State lives for the process lifetime only; it is never persisted, so a
// restart resets it.
package guard

import (
	"sync"
	"time"
)

const (
	// MaxFailures before the lockout window engages.
	MaxFailures = 5
	// LockoutDuration is the fixed refusal window.
	LockoutDuration = 30 * time.Second
)

// Guard is the failed-attempt tracker.
type Guard struct {
	mu          sync.Mutex
	failures    int
	lockedUntil time.Time

	clock func() time.Time
}

// New creates a guard.
func New() *Guard {
	return &Guard{clock: time.Now}
}

// NewWithClock creates a guard with an injected clock for tests.
func NewWithClock(clock func() time.Time) *Guard {
	return &Guard{clock: clock}
}

// RecordFailure counts a failed unlock. It returns the lockout duration
// when this failure engages the window.
func (g *Guard) RecordFailure() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures++
	if g.failures >= MaxFailures {
		g.lockedUntil = g.clock().Add(LockoutDuration)
		return LockoutDuration, true
	}
	return 0, false
}

// RecordSuccess resets the failure count and clears any lockout.
func (g *Guard) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.lockedUntil = time.Time{}
}

// Lockout reports whether a lockout is active and how long remains.
// An expired lockout resets the counter so the caller gets a fresh set
// of attempts.
func (g *Guard) Lockout() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lockedUntil.IsZero() {
		return 0, false
	}

	now := g.clock()
	if now.Before(g.lockedUntil) {
		return g.lockedUntil.Sub(now), true
	}

	g.failures = 0
	g.lockedUntil = time.Time{}
	return 0, false
}

// Failures returns the current failure count.
func (g *Guard) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}
