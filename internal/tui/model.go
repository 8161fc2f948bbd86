package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/socialpipe/runloop/internal/loop"
	"github.com/socialpipe/runloop/internal/stats"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// StatusSource provides the current loop snapshot.
type StatusSource interface {
	Snapshot() loop.Snapshot
}

// StatsSource provides aggregated run statistics.
type StatsSource interface {
	Aggregate() stats.Aggregate
}

// Config holds TUI configuration.
type Config struct {
	Profile      string
	Worker       string
	DryRun       bool
	MetricsAddr  string
	StatusSource StatusSource
	StatsSource  StatsSource
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	profile     string
	worker      string
	dryRun      bool
	metricsAddr string

	// Current state
	snapshot   loop.Snapshot
	agg        stats.Aggregate
	startTime  time.Time
	lastUpdate time.Time

	// Display options
	width  int
	height int

	statusSource StatusSource
	statsSource  StatsSource

	quitting bool
}

// New creates a new TUI model.
func New(cfg Config) Model {
	return Model{
		profile:      cfg.Profile,
		worker:       cfg.Worker,
		dryRun:       cfg.DryRun,
		metricsAddr:  cfg.MetricsAddr,
		statusSource: cfg.StatusSource,
		statsSource:  cfg.StatsSource,
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		width:        80,
		height:       24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			// Force refresh
			return m, tickCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.statusSource != nil {
			m.snapshot = m.statusSource.Snapshot()
		}
		if m.statsSource != nil {
			m.agg = m.statsSource.Aggregate()
		}
		m.lastUpdate = time.Now()
		return m, tickCmd()

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the loop started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Countdown returns the time remaining until the next run. Zero when
// the loop is not sleeping.
func (m Model) Countdown() time.Duration {
	if m.snapshot.State != loop.StateSleeping || m.snapshot.NextRun.IsZero() {
		return 0
	}
	remaining := time.Until(m.snapshot.NextRun)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SleepProgress returns how far through the current sleep the loop is
// (0.0 to 1.0). Zero when the loop is not sleeping.
func (m Model) SleepProgress() float64 {
	if m.snapshot.State != loop.StateSleeping || m.snapshot.NextRun.IsZero() {
		return 0
	}
	total := m.snapshot.NextRun.Sub(m.snapshot.SleepStarted)
	if total <= 0 {
		return 0
	}
	done := time.Since(m.snapshot.SleepStarted)
	progress := float64(done) / float64(total)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	return progress
}

// =============================================================================
// Helper for external use
// =============================================================================

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatCountdown formats a countdown as MM:SS (or HH:MM:SS past an hour).
func formatCountdown(d time.Duration) string {
	if d >= time.Hour {
		return formatDuration(d)
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatSeconds formats a duration in seconds with one decimal.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
