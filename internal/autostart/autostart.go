// Package autostart registers the loop to launch at user logon.
//
// The host scheduler integration lives behind the Registrar interface
// so the loop itself never depends on the concrete mechanism.
package autostart

import "context"

// Task describes one logon-triggered registration.
type Task struct {
	// Name is the logical task name. Registering the same name twice
	// replaces the previous registration.
	Name string

	// Description is shown by the host scheduler's tooling.
	Description string

	// ExecStart is the full command line launching the loop in
	// continuous (non-one-shot) mode.
	ExecStart string

	// WorkingDir is the working directory for the launched loop.
	WorkingDir string
}

// Registrar creates and removes logon-triggered task registrations.
// Register is idempotent: any existing registration under the same
// name is removed first.
type Registrar interface {
	Register(ctx context.Context, task Task) error
	Unregister(ctx context.Context, name string) error
}
