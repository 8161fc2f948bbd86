package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Environment variable names passed to every worker run.
const (
	// EnvProfile carries the profile identifier (single-account mode).
	EnvProfile = "PROFILE"

	// EnvDryRun signals the worker to suppress real side effects
	// (uploads stay disabled until explicitly switched off).
	EnvDryRun = "DRY_RUN"
)

// WorkerConfig holds configuration for worker process execution.
type WorkerConfig struct {
	// BinaryPath is the worker program to launch.
	BinaryPath string

	// EntryPoint is the sole argument, a path relative to WorkDir.
	EntryPoint string

	// WorkDir is the child's working directory (the project root).
	WorkDir string

	// Profile is the value of the PROFILE environment variable.
	Profile string

	// DryRun controls the DRY_RUN environment variable.
	DryRun bool
}

// WorkerRunner implements Builder for the configured worker program.
type WorkerRunner struct {
	config *WorkerConfig
}

// NewWorkerRunner creates a new worker runner with the given configuration.
func NewWorkerRunner(cfg *WorkerConfig) *WorkerRunner {
	return &WorkerRunner{config: cfg}
}

// Name returns the worker binary name.
func (r *WorkerRunner) Name() string {
	return r.config.BinaryPath
}

// Config returns the runner's configuration.
func (r *WorkerRunner) Config() *WorkerConfig {
	return r.config
}

// BuildCommand creates an exec.Cmd for one worker run.
// Profile and dry-run are set on the command's environment explicitly,
// never via process-global mutation, so concurrent builds cannot leak
// state into each other.
func (r *WorkerRunner) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	if r.config.BinaryPath == "" {
		return nil, fmt.Errorf("worker binary path is empty")
	}

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, r.config.EntryPoint)
	cmd.Dir = r.config.WorkDir
	cmd.Env = append(os.Environ(), r.envOverrides()...)

	return cmd, nil
}

// envOverrides returns the per-run environment entries.
func (r *WorkerRunner) envOverrides() []string {
	dryRun := "0"
	if r.config.DryRun {
		dryRun = "1"
	}
	return []string{
		EnvProfile + "=" + r.config.Profile,
		EnvDryRun + "=" + dryRun,
	}
}

// CommandString returns the command line that would be run, for -print-cmd.
func (r *WorkerRunner) CommandString() string {
	parts := append(r.envOverrides(), r.config.BinaryPath, r.config.EntryPoint)
	return strings.Join(parts, " ")
}
