// Package loop drives the recurring run cadence: execute, jitter, sleep.
package loop

// State represents the current state of the loop controller.
type State int

const (
	// StateCreated is the initial state before the first run.
	StateCreated State = iota

	// StateRunning indicates a worker run is in progress.
	StateRunning

	// StateSleeping indicates the loop is waiting out the jitter delay.
	StateSleeping

	// StateStopped indicates the loop has terminated.
	StateStopped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsActive returns true while the loop is still scheduling runs.
func (s State) IsActive() bool {
	return s == StateRunning || s == StateSleeping
}
