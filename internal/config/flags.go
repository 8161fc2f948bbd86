package config

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `runloop - recurring worker runner with jittered scheduling

Usage:
  runloop [flags]

Scheduling Flags:
`)
		printFlagCategory([]string{"min", "max", "once", "max-runs", "seed"})

		fmt.Fprintf(os.Stderr, "\nWorker:\n")
		printFlagCategory([]string{"worker", "entrypoint", "workdir", "profile", "dry-run"})

		fmt.Fprintf(os.Stderr, "\nArtifacts:\n")
		printFlagCategory([]string{"log-dir", "history"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nSafety & Diagnostics:\n")
		printFlagCategory([]string{"print-cmd", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Default cadence: one run every 15-40 minutes, dry-run on
  runloop

  # Single cycle, then exit
  runloop -once

  # Tighter cadence, live side effects enabled
  runloop -min 30 -max 90 -dry-run=false

`)
	}

	// Scheduling
	flag.IntVar(&cfg.MinMinutes, "min", cfg.MinMinutes, "Minimum minutes between runs")
	flag.IntVar(&cfg.MaxMinutes, "max", cfg.MaxMinutes, "Maximum minutes between runs")
	flag.BoolVar(&cfg.Once, "once", cfg.Once, "Run one cycle and exit")
	flag.IntVar(&cfg.MaxRuns, "max-runs", cfg.MaxRuns, "Stop after this many runs (0 = unlimited)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Jitter RNG seed (0 = seed from time)")

	// Worker
	flag.StringVar(&cfg.WorkerPath, "worker", cfg.WorkerPath, "Worker program to launch each run")
	flag.StringVar(&cfg.EntryPoint, "entrypoint", cfg.EntryPoint, "Entry point passed as the worker's only argument")
	flag.StringVar(&cfg.WorkDir, "workdir", cfg.WorkDir, "Working directory for the worker (project root)")
	flag.StringVar(&cfg.Profile, "profile", cfg.Profile, "Profile identifier passed as PROFILE to the worker")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Pass DRY_RUN=1 to the worker (use -dry-run=false for live runs)")

	// Artifacts
	flag.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for per-run log files (created if absent)")
	flag.StringVar(&cfg.HistoryFile, "history", cfg.HistoryFile, "JSON run history file (empty = disabled)")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	// Safety & Diagnostics
	flag.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the worker command and exit")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	flag.Parse()

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s\n    \t%s", f.Name, f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}
