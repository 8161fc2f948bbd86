// Package config provides configuration management for runloop.
package config

// Config holds all configuration options for the run loop.
type Config struct {
	// Scheduling
	MinMinutes int  `json:"min_minutes"` // Lower bound of the jitter window
	MaxMinutes int  `json:"max_minutes"` // Upper bound of the jitter window
	Once       bool `json:"once"`        // Run a single cycle and exit
	MaxRuns    int  `json:"max_runs"`    // 0 = unlimited

	// Worker
	WorkerPath string `json:"worker_path"` // Worker program launched each run
	EntryPoint string `json:"entry_point"` // Sole argument, relative to WorkDir
	WorkDir    string `json:"work_dir"`    // Child working directory
	Profile    string `json:"profile"`     // PROFILE env for the child
	DryRun     bool   `json:"dry_run"`     // DRY_RUN env for the child

	// Artifacts
	LogDir      string `json:"log_dir"`      // Per-run log files
	HistoryFile string `json:"history_file"` // Empty = history disabled

	// Observability
	MetricsAddr string `json:"metrics_addr"` // Empty = metrics server disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`

	// Seed for the jitter source. 0 = seed from current time.
	Seed int64 `json:"seed"`
}

// DefaultProfile is the fixed profile identifier for single-account mode.
const DefaultProfile = "main"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Scheduling
		MinMinutes: 15,
		MaxMinutes: 40,
		Once:       false,
		MaxRuns:    0, // Unlimited

		// Worker
		WorkerPath: "python3",
		EntryPoint: "main.py",
		WorkDir:    ".",
		Profile:    DefaultProfile,
		DryRun:     true, // Real side effects stay suppressed until opted out

		// Artifacts
		LogDir:      "output/logs",
		HistoryFile: "output/history.json",

		// Observability
		MetricsAddr: "0.0.0.0:17092",
		Verbose:     false,
		LogFormat:   "json",
		TUIEnabled:  false,

		Seed: 0,
	}
}
