package jitter

import (
	"testing"
	"time"
)

// =============================================================================
// Tests: Delay bounds
// =============================================================================

func TestDelay_WithinClosedInterval(t *testing.T) {
	s := NewSource(42)
	min := 15 * time.Minute
	max := 40 * time.Minute

	sawMin := false
	sawMax := false

	for i := 0; i < 10000; i++ {
		d := s.Delay(min, max)
		if d < min || d > max {
			t.Fatalf("Delay() = %v, want in [%v, %v]", d, min, max)
		}
		if d%time.Second != 0 {
			t.Fatalf("Delay() = %v, want whole seconds", d)
		}
		if d == min {
			sawMin = true
		}
		if d == max {
			sawMax = true
		}
	}

	// Both endpoints must be reachable. With a 1501-value range and
	// 10000 draws, missing an endpoint is overwhelmingly unlikely.
	if !sawMin {
		t.Error("minimum delay never drawn")
	}
	if !sawMax {
		t.Error("maximum delay never drawn")
	}
}

func TestDelay_EqualBounds(t *testing.T) {
	s := NewSource(1)

	for i := 0; i < 100; i++ {
		if d := s.DelayMinutes(20, 20); d != 20*time.Minute {
			t.Fatalf("DelayMinutes(20, 20) = %v, want exactly 20m", d)
		}
	}
}

func TestDelay_Deterministic(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)

	for i := 0; i < 100; i++ {
		da := a.DelayMinutes(15, 40)
		db := b.DelayMinutes(15, 40)
		if da != db {
			t.Fatalf("draw %d: %v != %v with identical seeds", i, da, db)
		}
	}
}

func TestDelay_SubSecondWindow(t *testing.T) {
	s := NewSource(3)

	if d := s.Delay(100*time.Millisecond, 900*time.Millisecond); d != 0 {
		t.Errorf("Delay(100ms, 900ms) = %v, want 0 (second granularity)", d)
	}
}
