package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/socialpipe/runloop/internal/executor"
	"github.com/socialpipe/runloop/internal/jitter"
)

// ErrRunFailed is returned from Run in one-shot mode when the single
// run did not succeed.
var ErrRunFailed = errors.New("run failed")

// RunExecutor performs one worker run. Outcomes are values; the
// executor never propagates per-run failures as errors.
type RunExecutor interface {
	ExecuteOnce(ctx context.Context) executor.Outcome
}

// Callbacks contains optional callback functions for loop events.
type Callbacks struct {
	// OnRunStart is called before each run begins.
	OnRunStart func(runNumber int)

	// OnRunEnd is called with the outcome of each completed run.
	OnRunEnd func(runNumber int, outcome executor.Outcome)

	// OnSleep is called when the next run has been scheduled.
	OnSleep func(runNumber int, delay time.Duration, nextRun time.Time)
}

// Snapshot is a point-in-time view of the loop for dashboards.
type Snapshot struct {
	State       State
	Runs        int
	Failures    int
	LastOutcome *executor.Outcome
	// SleepStarted and NextRun bound the current sleep window when
	// State is StateSleeping.
	SleepStarted time.Time
	NextRun      time.Time
	StartedAt    time.Time
}

// Config holds configuration for creating a new Controller.
type Config struct {
	Executor   RunExecutor
	Jitter     *jitter.Source
	Logger     *slog.Logger
	Callbacks  Callbacks
	MinMinutes int
	MaxMinutes int
	Once       bool
	MaxRuns    int // 0 = unlimited
}

// Controller owns the run cadence. It executes runs strictly
// sequentially: exactly one worker process is active at a time, and the
// jitter sleep is the sole suspension point.
type Controller struct {
	executor  RunExecutor
	logger    *slog.Logger
	callbacks Callbacks
	once      bool
	maxRuns   int

	// delayFn draws the next inter-run delay. Overridable in tests.
	delayFn func() time.Duration

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a new Controller with the given configuration.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	src := cfg.Jitter
	if src == nil {
		src = jitter.NewSourceFromTime()
	}

	return &Controller{
		executor:  cfg.Executor,
		logger:    logger,
		callbacks: cfg.Callbacks,
		once:      cfg.Once,
		maxRuns:   cfg.MaxRuns,
		delayFn: func() time.Duration {
			return src.DelayMinutes(cfg.MinMinutes, cfg.MaxMinutes)
		},
		snap: Snapshot{State: StateCreated},
	}
}

// Run executes the scheduling loop. In continuous mode it blocks until
// the context is cancelled; per-run failures are reported through
// logging and callbacks but never terminate the loop. In one-shot mode
// it executes exactly one run and returns without sleeping.
func (c *Controller) Run(ctx context.Context) error {
	c.update(func(s *Snapshot) { s.StartedAt = time.Now() })

	for run := 1; ; run++ {
		select {
		case <-ctx.Done():
			c.setState(StateStopped)
			return ctx.Err()
		default:
		}

		c.update(func(s *Snapshot) { s.State = StateRunning })
		if c.callbacks.OnRunStart != nil {
			c.callbacks.OnRunStart(run)
		}

		outcome := c.executor.ExecuteOnce(ctx)

		c.update(func(s *Snapshot) {
			s.Runs = run
			if !outcome.Success() {
				s.Failures++
			}
			o := outcome
			s.LastOutcome = &o
		})
		if c.callbacks.OnRunEnd != nil {
			c.callbacks.OnRunEnd(run, outcome)
		}

		if ctx.Err() != nil {
			c.setState(StateStopped)
			return ctx.Err()
		}

		if c.once {
			c.setState(StateStopped)
			if outcome.Success() {
				return nil
			}
			return ErrRunFailed
		}

		if c.maxRuns > 0 && run >= c.maxRuns {
			c.setState(StateStopped)
			c.logger.Info("max_runs_reached", "runs", run)
			return nil
		}

		delay := c.delayFn()
		nextRun := time.Now().Add(delay)

		c.logger.Info("next_run_scheduled",
			"run", run+1,
			"delay", delay.String(),
			"next_run", nextRun.Format(time.RFC3339),
		)

		c.update(func(s *Snapshot) {
			s.State = StateSleeping
			s.SleepStarted = nextRun.Add(-delay)
			s.NextRun = nextRun
		})
		if c.callbacks.OnSleep != nil {
			c.callbacks.OnSleep(run, delay, nextRun)
		}

		select {
		case <-ctx.Done():
			c.setState(StateStopped)
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Snapshot returns a copy of the current loop state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// State returns the current state of the controller.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.State
}

func (c *Controller) setState(s State) {
	c.update(func(snap *Snapshot) { snap.State = s })
}

func (c *Controller) update(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	c.mu.Unlock()
}
