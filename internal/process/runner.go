// Package process provides abstractions for launching the external worker.
package process

import (
	"context"
	"os/exec"
)

// Builder creates executable commands for worker runs.
// This interface keeps the executor decoupled from the concrete worker.
type Builder interface {
	// BuildCommand returns a ready-to-start command for one run.
	// The command must NOT be started yet.
	BuildCommand(ctx context.Context) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}
