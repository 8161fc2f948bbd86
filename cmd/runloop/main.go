// Package main provides the runloop CLI entry point.
//
// runloop repeatedly launches a worker program at randomized intervals,
// captures each run's output into a per-run log file, and keeps going
// regardless of how individual runs end.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/socialpipe/runloop/internal/config"
	"github.com/socialpipe/runloop/internal/executor"
	"github.com/socialpipe/runloop/internal/history"
	"github.com/socialpipe/runloop/internal/jitter"
	"github.com/socialpipe/runloop/internal/logging"
	"github.com/socialpipe/runloop/internal/loop"
	"github.com/socialpipe/runloop/internal/metrics"
	"github.com/socialpipe/runloop/internal/preflight"
	"github.com/socialpipe/runloop/internal/process"
	"github.com/socialpipe/runloop/internal/stats"
	"github.com/socialpipe/runloop/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/runloop
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("runloop %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// When the TUI is enabled, suppress logs to avoid interfering with
	// its rendering.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	runner := process.NewWorkerRunner(&process.WorkerConfig{
		BinaryPath: cfg.WorkerPath,
		EntryPoint: cfg.EntryPoint,
		WorkDir:    cfg.WorkDir,
		Profile:    cfg.Profile,
		DryRun:     cfg.DryRun,
	})

	// Handle -print-cmd mode
	if cfg.PrintCmd {
		fmt.Println("# Command that would be run each cycle:")
		fmt.Println()
		fmt.Println(runner.CommandString())
		return 0
	}

	if !cfg.SkipPreflight {
		result := preflight.RunAll(cfg.WorkerPath, cfg.EntryPoint, cfg.WorkDir, cfg.LogDir)
		if !cfg.TUIEnabled {
			preflight.PrintResults(result)
		}
		if !result.Passed {
			logger.Error("preflight_failed", "summary", result.Summary())
			return 1
		}
	}

	logger.Info("starting",
		"version", version,
		"profile", cfg.Profile,
		"worker", cfg.WorkerPath,
		"entrypoint", cfg.EntryPoint,
		"dry_run", cfg.DryRun,
		"min_minutes", cfg.MinMinutes,
		"max_minutes", cfg.MaxMinutes,
		"once", cfg.Once,
		"metrics_addr", cfg.MetricsAddr,
	)

	if !cfg.TUIEnabled {
		printBanner(cfg)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.SetInfo(version, cfg.Profile, cfg.WorkerPath)

	var server *metrics.Server
	if cfg.MetricsAddr != "" {
		server = metrics.NewServer(cfg.MetricsAddr, registry, logger)
		if err := server.Start(); err != nil {
			logger.Error("metrics_server_failed", "error", err)
			return 1
		}
	}

	// Run bookkeeping
	tracker := stats.NewTracker()
	var store *history.Store
	if cfg.HistoryFile != "" {
		store = history.NewStore(cfg.HistoryFile, cfg.DryRun)
	}

	exec := executor.New(executor.Config{
		Builder: runner,
		Profile: cfg.Profile,
		LogDir:  cfg.LogDir,
		Logger:  logger,
	})

	src := jitter.NewSourceFromTime()
	if cfg.Seed != 0 {
		src = jitter.NewSource(cfg.Seed)
	}

	controller := loop.New(loop.Config{
		Executor:   exec,
		Jitter:     src,
		Logger:     logger,
		MinMinutes: cfg.MinMinutes,
		MaxMinutes: cfg.MaxMinutes,
		Once:       cfg.Once,
		MaxRuns:    cfg.MaxRuns,
		Callbacks: loop.Callbacks{
			OnRunStart: func(run int) {
				logger.Info("run_starting", "run", run)
			},
			OnRunEnd: func(run int, o executor.Outcome) {
				collector.ObserveRun(o)
				tracker.Record(o)
				if store != nil {
					if err := store.Append(o); err != nil {
						logger.Warn("history_append_failed", "error", err)
					}
				}
			},
			OnSleep: func(run int, delay time.Duration, nextRun time.Time) {
				collector.ObserveSleep(delay, nextRun)
			},
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	loopErr := runController(ctx, cfg, controller, tracker)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		server.Shutdown(shutdownCtx)
		cancel()
	}

	// Exit summary plus a final metrics snapshot next to the run logs.
	agg := tracker.Aggregate()
	fmt.Print(stats.FormatExitSummary(agg, stats.SummaryConfig{
		Profile:     cfg.Profile,
		DryRun:      cfg.DryRun,
		Elapsed:     time.Since(startTime),
		MetricsAddr: cfg.MetricsAddr,
	}))

	ts := time.Now().Format(executor.TimestampLayout)
	if path, err := metrics.SnapshotToFile(cfg.LogDir, ts, registry); err != nil {
		logger.Warn("metrics_snapshot_failed", "error", err)
	} else {
		fmt.Printf("Metrics Snapshot:   %s\n", path)
	}

	switch {
	case loopErr == nil:
		return 0
	case errors.Is(loopErr, loop.ErrRunFailed):
		return 1
	case errors.Is(loopErr, context.Canceled):
		// Normal shutdown via signal.
		return 0
	default:
		logger.Error("loop_failed", "error", loopErr)
		return 1
	}
}

// runController drives the loop, with or without the TUI dashboard.
func runController(ctx context.Context, cfg *config.Config, controller *loop.Controller, tracker *stats.Tracker) error {
	if !cfg.TUIEnabled {
		return controller.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.New(tui.Config{
		Profile:      cfg.Profile,
		Worker:       cfg.WorkerPath,
		DryRun:       cfg.DryRun,
		MetricsAddr:  cfg.MetricsAddr,
		StatusSource: controller,
		StatsSource:  tracker,
	}), tea.WithAltScreen())

	errCh := make(chan error, 1)
	go func() {
		errCh <- controller.Run(ctx)
		tui.SendQuit(program)
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-errCh
		return err
	}

	// The user quit the dashboard; stop the loop.
	cancel()
	return <-errCh
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	mode := "LIVE"
	if cfg.DryRun {
		mode = "DRY RUN"
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                             runloop                               ║")
	fmt.Println("║         Recurring Worker Runner with Randomized Intervals         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Worker:      %s %s (in %s)\n", cfg.WorkerPath, cfg.EntryPoint, cfg.WorkDir)
	fmt.Printf("  Profile:     %s (%s)\n", cfg.Profile, mode)
	if cfg.Once {
		fmt.Println("  Schedule:    single run, no sleep")
	} else {
		fmt.Printf("  Schedule:    every %d-%d minutes (uniform)\n", cfg.MinMinutes, cfg.MaxMinutes)
	}
	fmt.Printf("  Run Logs:    %s\n", cfg.LogDir)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}
