package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// Profile is the active profile identifier.
	Profile string

	// DryRun reports whether side effects were suppressed.
	DryRun bool

	// Elapsed is the total loop runtime.
	Elapsed time.Duration

	// MetricsAddr is the Prometheus endpoint, empty if disabled.
	MetricsAddr string
}

// FormatExitSummary formats aggregated run stats for display at exit.
func FormatExitSummary(agg Aggregate, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n")
	b.WriteString("                      runloop Exit Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n\n")

	mode := "LIVE"
	if cfg.DryRun {
		mode = "DRY RUN"
	}

	fmt.Fprintf(&b, "Profile:            %s (%s)\n", cfg.Profile, mode)
	fmt.Fprintf(&b, "Loop Runtime:       %s\n", FormatDuration(cfg.Elapsed))
	fmt.Fprintf(&b, "Runs:               %d\n", agg.Runs)
	fmt.Fprintf(&b, "Failures:           %d", agg.Failures)
	if agg.LaunchFailures > 0 {
		fmt.Fprintf(&b, " (%d launch failures)", agg.LaunchFailures)
	}
	b.WriteString("\n\n")

	if agg.Runs > 0 {
		b.WriteString("Run Duration:\n")
		fmt.Fprintf(&b, "  p50: %-10s p95: %-10s p99: %s\n\n",
			FormatDuration(agg.DurationP50),
			FormatDuration(agg.DurationP95),
			FormatDuration(agg.DurationP99),
		)

		b.WriteString("Exit Codes:\n")
		codes := make([]int, 0, len(agg.ExitCodes))
		for code := range agg.ExitCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			label := fmt.Sprintf("%d", code)
			if code == -1 {
				label = "launch failure"
			}
			fmt.Fprintf(&b, "  %-16s %d\n", label, agg.ExitCodes[code])
		}
		b.WriteString("\n")
	}

	if agg.LastLogPath != "" {
		fmt.Fprintf(&b, "Last Run Log:       %s\n", agg.LastLogPath)
	}
	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics:            http://%s/metrics\n", cfg.MetricsAddr)
	}

	return b.String()
}

// FormatDuration renders a duration compactly (1h2m3s granularity).
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)

	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
