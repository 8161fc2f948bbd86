// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks.
func RunAll(workerPath, entryPoint, workDir, logDir string) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	for _, check := range []Check{
		checkWorker(workerPath),
		checkEntryPoint(workDir, entryPoint),
		checkLogDir(logDir),
	} {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	return result
}

// checkWorker verifies the worker program is resolvable and executable.
func checkWorker(path string) Check {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Check{
			Name:    "worker",
			Passed:  false,
			Message: fmt.Sprintf("not found: %s (%v)", path, err),
		}
	}

	return Check{
		Name:    "worker",
		Passed:  true,
		Message: fmt.Sprintf("found at %s", resolved),
	}
}

// checkEntryPoint verifies the entry point exists under the work dir.
// Missing is a warning, not a failure: the worker may resolve it
// through its own means.
func checkEntryPoint(workDir, entryPoint string) Check {
	path := entryPoint
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, entryPoint)
	}

	if _, err := os.Stat(path); err != nil {
		return Check{
			Name:    "entrypoint",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s not found under %s", entryPoint, workDir),
		}
	}

	return Check{
		Name:    "entrypoint",
		Passed:  true,
		Message: path,
	}
}

// checkLogDir verifies the log directory can be created and written.
func checkLogDir(dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{
			Name:    "log_dir",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}

	probe := filepath.Join(dir, ".preflight")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return Check{
			Name:    "log_dir",
			Passed:  false,
			Message: fmt.Sprintf("cannot write to %s: %v", dir, err),
		}
	}
	os.Remove(probe)

	return Check{
		Name:    "log_dir",
		Passed:  true,
		Message: dir + " is writable",
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "worker":
		return "install the worker program or point -worker at it"
	case "log_dir":
		return "check permissions on the log directory (-log-dir)"
	default:
		return "see documentation"
	}
}

// Summary returns a one-line result, for logs.
func (r *Result) Summary() string {
	var failed []string
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	if len(failed) == 0 {
		return "all checks passed"
	}
	return "failed: " + strings.Join(failed, ", ")
}
