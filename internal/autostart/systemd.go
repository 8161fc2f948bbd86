package autostart

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes a systemctl --user subcommand.
// Injectable so tests never touch the host's systemd.
type CommandRunner func(ctx context.Context, args ...string) ([]byte, error)

// SystemdRegistrar registers the loop as a systemd user unit. User
// units run in the invoking user's session with no extra privileges,
// which is exactly the "limited" run level the registration wants.
type SystemdRegistrar struct {
	unitDir string
	run     CommandRunner
	logger  *slog.Logger
}

// NewSystemdRegistrar creates a registrar writing units to the current
// user's systemd directory (~/.config/systemd/user).
func NewSystemdRegistrar(logger *slog.Logger) (*SystemdRegistrar, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}

	return &SystemdRegistrar{
		unitDir: filepath.Join(configDir, "systemd", "user"),
		run:     runSystemctl,
		logger:  logger,
	}, nil
}

func runSystemctl(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "systemctl", append([]string{"--user"}, args...)...)
	return cmd.CombinedOutput()
}

// Register removes any existing registration under the task name, then
// writes the unit file and enables it for the user session. Safe to
// re-run; the end state is always exactly one active registration.
func (r *SystemdRegistrar) Register(ctx context.Context, task Task) error {
	if err := r.Unregister(ctx, task.Name); err != nil {
		return fmt.Errorf("remove previous registration: %w", err)
	}

	if err := os.MkdirAll(r.unitDir, 0o755); err != nil {
		return fmt.Errorf("create unit dir: %w", err)
	}

	unitPath := r.unitPath(task.Name)
	if err := os.WriteFile(unitPath, []byte(unitFile(task)), 0o644); err != nil {
		return fmt.Errorf("write unit file: %w", err)
	}

	if out, err := r.run(ctx, "daemon-reload"); err != nil {
		return fmt.Errorf("daemon-reload: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	unit := unitName(task.Name)
	if out, err := r.run(ctx, "enable", unit); err != nil {
		return fmt.Errorf("enable %s: %w (%s)", unit, err, strings.TrimSpace(string(out)))
	}

	r.logger.Info("autostart_registered",
		"task", task.Name,
		"unit", unitPath,
	)
	return nil
}

// Unregister disables and removes the unit. A registration that does
// not exist is not an error.
func (r *SystemdRegistrar) Unregister(ctx context.Context, name string) error {
	unit := unitName(name)

	if out, err := r.run(ctx, "disable", unit); err != nil && !isNotFound(out) {
		return fmt.Errorf("disable %s: %w (%s)", unit, err, strings.TrimSpace(string(out)))
	}

	if err := os.Remove(r.unitPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove unit file: %w", err)
	}

	// Best effort: a missing unit leaves nothing to reload.
	r.run(ctx, "daemon-reload")

	return nil
}

func (r *SystemdRegistrar) unitPath(name string) string {
	return filepath.Join(r.unitDir, unitName(name))
}

func unitName(name string) string {
	return name + ".service"
}

// isNotFound reports whether systemctl output describes a unit that
// was never registered.
func isNotFound(out []byte) bool {
	s := strings.ToLower(string(out))
	return strings.Contains(s, "does not exist") ||
		strings.Contains(s, "no such file") ||
		strings.Contains(s, "not-found") ||
		strings.Contains(s, "not loaded")
}

// unitFile renders the systemd unit for a task.
func unitFile(task Task) string {
	var b strings.Builder

	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=%s\n", task.Description)
	b.WriteString("\n[Service]\n")
	b.WriteString("Type=simple\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", task.ExecStart)
	if task.WorkingDir != "" {
		fmt.Fprintf(&b, "WorkingDirectory=%s\n", task.WorkingDir)
	}
	b.WriteString("Restart=no\n")
	b.WriteString("\n[Install]\n")
	b.WriteString("WantedBy=default.target\n")

	return b.String()
}
