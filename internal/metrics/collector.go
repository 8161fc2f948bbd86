// Package metrics provides Prometheus metrics for runloop.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socialpipe/runloop/internal/executor"
)

// Collector holds all runloop metrics and updates them from run outcomes.
type Collector struct {
	info            *prometheus.GaugeVec
	runsTotal       prometheus.Counter
	runFailures     prometheus.Counter
	launchFailures  prometheus.Counter
	lastExitCode    prometheus.Gauge
	lastRunUnix     prometheus.Gauge
	nextRunUnix     prometheus.Gauge
	sleepSeconds    prometheus.Gauge
	runDuration     prometheus.Histogram
	exitCodeCounter *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
// A nil registerer uses the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "runloop_info",
				Help: "Information about the run loop (value always 1)",
			},
			[]string{"version", "profile", "worker"},
		),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runloop_runs_total",
			Help: "Total worker runs attempted",
		}),
		runFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runloop_run_failures_total",
			Help: "Runs that ended in non-zero exit or launch failure",
		}),
		launchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runloop_launch_failures_total",
			Help: "Runs where the worker process could not be started",
		}),
		lastExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runloop_last_run_exit_code",
			Help: "Exit code of the most recent run (-1 = never started)",
		}),
		lastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runloop_last_run_timestamp_seconds",
			Help: "Unix time the most recent run finished",
		}),
		nextRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runloop_next_run_timestamp_seconds",
			Help: "Unix time the next run is scheduled for",
		}),
		sleepSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runloop_sleep_seconds",
			Help: "Most recently drawn jitter delay in seconds",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runloop_run_duration_seconds",
			Help:    "Wall time of worker runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~34m
		}),
		exitCodeCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runloop_exit_codes_total",
				Help: "Runs by exit code",
			},
			[]string{"exit_code"},
		),
	}

	reg.MustRegister(
		c.info,
		c.runsTotal,
		c.runFailures,
		c.launchFailures,
		c.lastExitCode,
		c.lastRunUnix,
		c.nextRunUnix,
		c.sleepSeconds,
		c.runDuration,
		c.exitCodeCounter,
	)

	return c
}

// SetInfo records static loop identity labels.
func (c *Collector) SetInfo(version, profile, worker string) {
	c.info.WithLabelValues(version, profile, worker).Set(1)
}

// ObserveRun updates metrics from one run outcome.
func (c *Collector) ObserveRun(o executor.Outcome) {
	c.runsTotal.Inc()
	c.lastExitCode.Set(float64(o.ExitCode))
	c.lastRunUnix.SetToCurrentTime()
	c.runDuration.Observe(o.Duration.Seconds())
	c.exitCodeCounter.WithLabelValues(exitCodeLabel(o.ExitCode)).Inc()

	if !o.Success() {
		c.runFailures.Inc()
	}
	if o.Err != nil {
		c.launchFailures.Inc()
	}
}

// ObserveSleep records the drawn jitter delay and the scheduled next run.
func (c *Collector) ObserveSleep(delay time.Duration, nextRun time.Time) {
	c.sleepSeconds.Set(delay.Seconds())
	c.nextRunUnix.Set(float64(nextRun.Unix()))
}

func exitCodeLabel(code int) string {
	if code == -1 {
		return "launch_failure"
	}
	// Small fixed cardinality: the worker defines a handful of codes.
	return strconv.Itoa(code)
}
