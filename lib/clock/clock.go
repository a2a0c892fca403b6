// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Production code holds a Clock and calls Now instead of time.Now.
// Real() is the standard library behavior; Fake() is a deterministic
// clock that moves only when a test advances it. The workspace needs
// wall time only for transcript timestamps, so the interface is
// deliberately small; timers go through bubbletea's tea.Tick.
package clock

import (
	"sync"
	"time"
)

// Clock abstracts the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance or Set is called.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d. Negative durations are ignored:
// fake time never runs backwards.
func (c *FakeClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
