// Package stats aggregates per-run statistics for the exit summary.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/socialpipe/runloop/internal/executor"
)

// Tracker accumulates run outcomes over the process lifetime.
// Durations go into a t-digest so percentile memory stays bounded no
// matter how long the loop runs.
type Tracker struct {
	mu sync.Mutex

	durations      *tdigest.TDigest
	runs           int
	failures       int
	launchFailures int
	exitCodes      map[int]int
	lastLogPath    string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		durations: tdigest.NewWithCompression(100), // ~100 centroids, ~10KB
		exitCodes: make(map[int]int),
	}
}

// Record folds one run outcome into the aggregate.
func (t *Tracker) Record(o executor.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs++
	t.exitCodes[o.ExitCode]++
	t.durations.Add(o.Duration.Seconds(), 1)

	if !o.Success() {
		t.failures++
	}
	if o.Err != nil {
		t.launchFailures++
	}
	if o.LogPath != "" {
		t.lastLogPath = o.LogPath
	}
}

// Percentile returns the q-th run duration percentile (q in [0, 1]).
// Returns 0 before any run has been recorded.
func (t *Tracker) Percentile(q float64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runs == 0 {
		return 0
	}
	return time.Duration(t.durations.Quantile(q) * float64(time.Second))
}

// Aggregate is a copyable view of the tracker for summary formatting.
type Aggregate struct {
	Runs           int
	Failures       int
	LaunchFailures int
	ExitCodes      map[int]int
	DurationP50    time.Duration
	DurationP95    time.Duration
	DurationP99    time.Duration
	LastLogPath    string
}

// Aggregate returns a snapshot of everything recorded so far.
func (t *Tracker) Aggregate() Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()

	codes := make(map[int]int, len(t.exitCodes))
	for k, v := range t.exitCodes {
		codes[k] = v
	}

	agg := Aggregate{
		Runs:           t.runs,
		Failures:       t.failures,
		LaunchFailures: t.launchFailures,
		ExitCodes:      codes,
		LastLogPath:    t.lastLogPath,
	}
	if t.runs > 0 {
		agg.DurationP50 = time.Duration(t.durations.Quantile(0.50) * float64(time.Second))
		agg.DurationP95 = time.Duration(t.durations.Quantile(0.95) * float64(time.Second))
		agg.DurationP99 = time.Duration(t.durations.Quantile(0.99) * float64(time.Second))
	}
	return agg
}
