// Package engine provides the state machine and the engine loop.
package engine

// Phase represents the engine lifecycle phase.
type Phase int

const (
	PhaseNotStarted Phase = iota // Library not yet loaded
	PhaseRunning                 // Polling for trigger presses
	PhaseStopping                // Cancellation observed, final fade running
	PhaseStopped                 // Playback resource released
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
