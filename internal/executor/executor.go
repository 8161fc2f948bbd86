// Package executor runs the external worker once and persists a log artifact.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/socialpipe/runloop/internal/process"
)

// TimestampLayout is the second-granularity timestamp used for display
// and for log file names.
const TimestampLayout = "20060102_150405"

// stderrSeparator divides captured stdout from captured stderr in the
// run log document.
const stderrSeparator = "--- stderr ---"

// Outcome captures the result of a single worker run.
// Launch and wait failures are contained here as values; they never
// propagate out of ExecuteOnce, so the loop always survives to schedule
// the next run.
type Outcome struct {
	Timestamp string        // Run start, TimestampLayout
	ExitCode  int           // Worker exit code (-1 if it never ran)
	Failed    bool          // Non-zero exit or launch failure
	Err       error         // Launch/wait failure, also serialized into the log
	LogPath   string        // Per-run log artifact
	Duration  time.Duration // Wall time from start to exit
}

// Success reports whether the run completed with exit code 0.
func (o Outcome) Success() bool {
	return !o.Failed
}

// Executor invokes the worker process and writes one log file per run.
type Executor struct {
	builder process.Builder
	profile string
	logDir  string
	logger  *slog.Logger
}

// Config holds configuration for creating a new Executor.
type Config struct {
	Builder process.Builder
	Profile string
	LogDir  string
	Logger  *slog.Logger
}

// New creates a new Executor with the given configuration.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		builder: cfg.Builder,
		profile: cfg.Profile,
		logDir:  cfg.LogDir,
		logger:  logger,
	}
}

// ExecuteOnce launches the worker, captures its combined output, writes
// the run log, and blocks until the child exits. No timeout is imposed:
// a hung worker blocks the loop until externally terminated.
func (e *Executor) ExecuteOnce(ctx context.Context) Outcome {
	ts := time.Now().Format(TimestampLayout)
	start := time.Now()

	outcome := Outcome{
		Timestamp: ts,
		ExitCode:  -1,
	}

	cmd, err := e.builder.BuildCommand(ctx)
	if err != nil {
		return e.contain(outcome, start, nil, nil, fmt.Errorf("build command: %w", err))
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return e.contain(outcome, start, nil, nil, fmt.Errorf("stdout pipe: %w", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return e.contain(outcome, start, nil, nil, fmt.Errorf("stderr pipe: %w", err))
	}

	e.logger.Info("run_starting",
		"timestamp", ts,
		"profile", e.profile,
		"worker", e.builder.Name(),
	)

	if err := cmd.Start(); err != nil {
		return e.contain(outcome, start, nil, nil, fmt.Errorf("start worker: %w", err))
	}

	// Drain both streams concurrently so heavy interleaved output on one
	// pipe can never block the other. Output is buffered in full until
	// exit; this is not a streaming log.
	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(&stdout, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		io.Copy(&stderr, stderrPipe)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	outcome.Duration = time.Since(start)
	outcome.ExitCode = extractExitCode(waitErr)
	outcome.Failed = outcome.ExitCode != 0

	logPath, logErr := e.writeRunLog(ts, stdout.Bytes(), stderr.Bytes(), "")
	outcome.LogPath = logPath
	if logErr != nil {
		e.logger.Error("run_log_write_failed", "error", logErr, "timestamp", ts)
	}

	if outcome.Failed {
		e.logger.Warn("run_failed",
			"timestamp", ts,
			"exit_code", outcome.ExitCode,
			"duration", outcome.Duration.String(),
			"log_path", logPath,
		)
	} else {
		e.logger.Info("run_complete",
			"timestamp", ts,
			"exit_code", outcome.ExitCode,
			"duration", outcome.Duration.String(),
			"log_path", logPath,
		)
	}

	return outcome
}

// contain converts a launch-side failure into a failed Outcome. The
// error text is serialized into the run log so the artifact exists even
// when the worker never produced output.
func (e *Executor) contain(o Outcome, start time.Time, stdout, stderr []byte, err error) Outcome {
	o.Duration = time.Since(start)
	o.Failed = true
	o.Err = err

	logPath, logErr := e.writeRunLog(o.Timestamp, stdout, stderr, err.Error())
	o.LogPath = logPath
	if logErr != nil {
		e.logger.Error("run_log_write_failed", "error", logErr, "timestamp", o.Timestamp)
	}

	e.logger.Warn("run_launch_failed",
		"timestamp", o.Timestamp,
		"error", err,
		"log_path", logPath,
	)

	return o
}

// writeRunLog composes and writes the per-run log document: a profile
// header, captured stdout, a separator, then captured stderr. Each run
// gets its own uniquely named file, so an interrupted write can never
// corrupt another run's artifact.
func (e *Executor) writeRunLog(ts string, stdout, stderr []byte, failure string) (string, error) {
	if err := os.MkdirAll(e.logDir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	var doc bytes.Buffer
	fmt.Fprintf(&doc, "=== run %s profile=%s ===\n", ts, e.profile)
	if failure != "" {
		fmt.Fprintf(&doc, "launch failure: %s\n", failure)
	}
	doc.Write(stdout)
	if len(stdout) > 0 && stdout[len(stdout)-1] != '\n' {
		doc.WriteByte('\n')
	}
	fmt.Fprintf(&doc, "%s\n", stderrSeparator)
	doc.Write(stderr)

	path := e.uniqueLogPath(ts)
	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write run log: %w", err)
	}

	return path, nil
}

// uniqueLogPath returns logDir/run_<ts>_<profile>.log, appending a
// numeric suffix on the off chance two runs start within one second.
func (e *Executor) uniqueLogPath(ts string) string {
	base := fmt.Sprintf("run_%s_%s", ts, e.profile)
	path := filepath.Join(e.logDir, base+".log")

	for seq := 2; ; seq++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(e.logDir, fmt.Sprintf("%s_%d.log", base, seq))
	}
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
