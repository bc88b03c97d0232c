// Package playback provides the crossfade-aware playback controller.
package playback

// State represents the controller state.
type State int

const (
	StateIdle    State = iota // No track playing
	StatePlaying              // A track is looping (possibly mid-crossfade)
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
