package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/socialpipe/runloop/internal/loop"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderDashboard renders the single-page dashboard.
func (m Model) renderDashboard() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderSchedule())
	sections = append(sections, m.renderTotals())

	if m.snapshot.LastOutcome != nil {
		sections = append(sections, m.renderLastRun())
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	mode := statusOK.Render("DRY RUN")
	if !m.dryRun {
		mode = statusWarning.Render("LIVE")
	}

	header := fmt.Sprintf(
		" runloop │ profile=%s │ %s │ Elapsed: %s ",
		m.profile,
		mode,
		formatDuration(m.Elapsed()),
	)

	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Schedule Section
// =============================================================================

func (m Model) renderSchedule() string {
	var status string
	var bar string

	switch m.snapshot.State {
	case loop.StateRunning:
		status = statusInfo.Render("● Worker running...")
		bar = mutedStyle.Render("waiting for run to finish")
	case loop.StateSleeping:
		status = statusOK.Render(fmt.Sprintf("● Sleeping │ next run in %s", formatCountdown(m.Countdown())))
		barWidth := m.width - 30
		if barWidth < 20 {
			barWidth = 20
		}
		bar = RenderProgressBar(m.SleepProgress(), barWidth)
	case loop.StateStopped:
		status = statusError.Render("● Stopped")
		bar = ""
	default:
		status = mutedStyle.Render("● Starting...")
		bar = ""
	}

	lines := []string{sectionHeaderStyle.Render("Schedule"), status}
	if bar != "" {
		lines = append(lines, bar)
	}

	return boxStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// =============================================================================
// Totals Section
// =============================================================================

func (m Model) renderTotals() string {
	snap := m.snapshot

	successes := snap.Runs - snap.Failures
	rows := []string{
		RenderKeyValue("Runs", strconv.Itoa(snap.Runs)),
		RenderKeyValue("Succeeded", valueGoodStyle.Render(strconv.Itoa(successes))),
	}

	failures := strconv.Itoa(snap.Failures)
	if snap.Failures > 0 {
		failures = valueBadStyle.Render(failures)
	}
	rows = append(rows, RenderKeyValue("Failed", failures))

	if m.agg.Runs > 0 {
		rows = append(rows,
			RenderKeyValue("Duration p50", formatSeconds(m.agg.DurationP50)),
			RenderKeyValue("Duration p95", formatSeconds(m.agg.DurationP95)),
		)
	}

	if len(m.agg.ExitCodes) > 0 {
		rows = append(rows, m.renderExitCodes())
	}

	return boxStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			append([]string{sectionHeaderStyle.Render("Totals")}, rows...)...,
		),
	)
}

func (m Model) renderExitCodes() string {
	codes := make([]int, 0, len(m.agg.ExitCodes))
	for code := range m.agg.ExitCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	line := ""
	for i, code := range codes {
		if i > 0 {
			line += "  "
		}
		entry := fmt.Sprintf("%d×%d", code, m.agg.ExitCodes[code])
		line += OutcomeStyle(code).Render(entry)
	}

	return RenderKeyValue("Exit codes", line)
}

// =============================================================================
// Last Run Section
// =============================================================================

func (m Model) renderLastRun() string {
	o := m.snapshot.LastOutcome

	var result string
	switch {
	case o.Err != nil:
		result = statusError.Render(fmt.Sprintf("✗ launch failure: %v", o.Err))
	case o.Failed:
		result = statusError.Render(fmt.Sprintf("✗ exit code %d", o.ExitCode))
	default:
		result = statusOK.Render("✓ success")
	}

	rows := []string{
		RenderKeyValue("Result", result),
		RenderKeyValue("Duration", formatSeconds(o.Duration)),
		RenderKeyValue("Log", dimStyle.Render(filepath.Base(o.LogPath))),
	}

	return boxStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			append([]string{sectionHeaderStyle.Render("Last Run")}, rows...)...,
		),
	)
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	parts := fmt.Sprintf(
		"metrics: http://%s/metrics │ updated %s ago │ q: quit  r: refresh",
		m.metricsAddr,
		time.Since(m.lastUpdate).Round(time.Second),
	)
	return footerStyle.Render(parts)
}
