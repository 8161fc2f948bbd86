// Package jitter draws randomized inter-run delays.
//
// Delays are uniform over a closed interval at whole-second
// granularity, so both endpoints of the configured window are
// reachable.
package jitter

import (
	"math/rand"
	"time"
)

// Source draws delays from its own rand.Rand. Not safe for concurrent
// use; the loop is strictly sequential so a single goroutine owns it.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source with a fixed seed, for reproducible
// schedules.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// NewSourceFromTime creates a Source seeded from the current time.
func NewSourceFromTime() *Source {
	return NewSource(time.Now().UnixNano())
}

// Delay returns a uniformly random duration in the closed interval
// [min, max], truncated to whole seconds. When max <= min the minimum
// is returned, so a degenerate window still produces a fixed delay.
func (s *Source) Delay(min, max time.Duration) time.Duration {
	minSec := int64(min / time.Second)
	maxSec := int64(max / time.Second)

	if maxSec <= minSec {
		return time.Duration(minSec) * time.Second
	}

	n := s.rng.Int63n(maxSec-minSec+1) + minSec
	return time.Duration(n) * time.Second
}

// DelayMinutes draws a delay for a window expressed in whole minutes.
func (s *Source) DelayMinutes(minMinutes, maxMinutes int) time.Duration {
	return s.Delay(
		time.Duration(minMinutes)*time.Minute,
		time.Duration(maxMinutes)*time.Minute,
	)
}
