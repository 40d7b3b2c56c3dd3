// Package clock abstracts the current time so that validity windows on
// campaigns, coupons and earning events can be tested.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns a Clock backed by the system time
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a settable clock for tests
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a Fake clock stopped at t
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// WindowState is the position of an instant relative to a validity window
type WindowState int

const (
	WindowOpen WindowState = iota
	WindowNotStarted
	WindowEnded
)

// InWindow locates now relative to the optional [start, end) window
func InWindow(now time.Time, start, end *time.Time) WindowState {
	if start != nil && now.Before(*start) {
		return WindowNotStarted
	}
	if end != nil && !now.Before(*end) {
		return WindowEnded
	}
	return WindowOpen
}
