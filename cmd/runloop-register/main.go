// Package main provides the runloop-register CLI entry point.
//
// runloop-register installs (or removes) a logon-triggered registration
// that launches runloop in continuous mode under the current user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/socialpipe/runloop/internal/autostart"
	"github.com/socialpipe/runloop/internal/config"
	"github.com/socialpipe/runloop/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		taskName   = flag.String("task", "runloop", "Registration name")
		binary     = flag.String("binary", "", "Path to the runloop binary (default: sibling of this binary)")
		workDir    = flag.String("workdir", "", "Working directory for the launched loop (default: current directory)")
		minMinutes = flag.Int("min", 15, "Minimum minutes between runs, embedded in the launch command")
		maxMinutes = flag.Int("max", 40, "Maximum minutes between runs, embedded in the launch command")
		profile    = flag.String("profile", config.DefaultProfile, "Profile for the launched loop")
		unregister = flag.Bool("unregister", false, "Remove the registration instead of creating it")
		showVer    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("runloop-register %s\n", version)
		return 0
	}

	logger := logging.NewLogger("text", "info", false)

	registrar, err := autostart.NewSystemdRegistrar(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()

	if *unregister {
		if err := registrar.Unregister(ctx, *taskName); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing registration: %v\n", err)
			return 1
		}
		fmt.Printf("Removed registration %q.\n", *taskName)
		return 0
	}

	task, err := buildTask(*taskName, *binary, *workDir, *profile, *minMinutes, *maxMinutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := registrar.Register(ctx, task); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering: %v\n", err)
		return 1
	}

	fmt.Printf("Registered %q to start at logon:\n", task.Name)
	fmt.Printf("  %s\n", task.ExecStart)
	return 0
}

// buildTask assembles the registration. The launch command always runs
// the loop in continuous mode; one-shot flags are never embedded.
func buildTask(name, binary, workDir, profile string, minMinutes, maxMinutes int) (autostart.Task, error) {
	if minMinutes < 1 || maxMinutes < minMinutes {
		return autostart.Task{}, fmt.Errorf("invalid interval window: min=%d max=%d", minMinutes, maxMinutes)
	}

	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return autostart.Task{}, fmt.Errorf("resolve own path: %w", err)
		}
		binary = filepath.Join(filepath.Dir(self), "runloop")
	}
	binary, err := filepath.Abs(binary)
	if err != nil {
		return autostart.Task{}, fmt.Errorf("resolve binary path: %w", err)
	}

	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return autostart.Task{}, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	return autostart.Task{
		Name:        name,
		Description: "runloop recurring worker runner",
		ExecStart:   fmt.Sprintf("%s -min %d -max %d -profile %s", binary, minMinutes, maxMinutes, profile),
		WorkingDir:  workDir,
	}, nil
}
