// Package throttle provides a minimum-interval gate for user triggers
package throttle

import (
	"errors"
	"sync"
	"time"
)

// DefaultWindow is the minimum time between accepted triggers.
const DefaultWindow = 500 * time.Millisecond

// ErrRateLimited marks a trigger dropped by a Limiter. It is not a user-facing error.
var ErrRateLimited = errors.New("rate limited")

// State is the limiter's position in its two-state machine
type State int

const (
	Ready State = iota
	CoolingDown
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case CoolingDown:
		return "cooling-down"
	default:
		return "unknown"
	}
}

// Limiter accepts at most one attempt per window. There is no timer: every
// call compares the elapsed time since the last accepted attempt.
type Limiter struct {
	mu       sync.Mutex
	window   time.Duration
	now      func() time.Time
	last     time.Time
	accepted bool
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter; a non-positive window selects DefaultWindow.
func New(window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Window returns the configured window
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Attempt reports whether a trigger is accepted now. An accepted attempt
// starts a new cooldown; a rejected one changes nothing.
func (l *Limiter) Attempt() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.stateAt(now) == CoolingDown {
		return false
	}
	l.last = now
	l.accepted = true
	return true
}

// State reports the current state without changing it.
func (l *Limiter) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateAt(l.now())
}

func (l *Limiter) stateAt(now time.Time) State {
	if l.accepted && now.Sub(l.last) < l.window {
		return CoolingDown
	}
	return Ready
}
