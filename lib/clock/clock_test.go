// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Fatalf("Now: got %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Fatalf("after Advance: got %v, want %v", fake.Now(), want)
	}

	fake.Advance(-time.Hour)
	if !fake.Now().Equal(want) {
		t.Fatalf("negative Advance moved the clock to %v", fake.Now())
	}

	later := start.Add(24 * time.Hour)
	fake.Set(later)
	if !fake.Now().Equal(later) {
		t.Fatalf("after Set: got %v, want %v", fake.Now(), later)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	wall := Real()
	first := wall.Now()
	second := wall.Now()
	if second.Before(first) {
		t.Fatalf("real clock went backwards: %v then %v", first, second)
	}
}
