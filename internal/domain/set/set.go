// Package set provides the music set domain entities.
package set

import "time"

// StageCount is the number of intensity stages in a set.
const StageCount = 3

// Stage identifies the intensity level within a set.
type Stage int

const (
	StageDefault Stage = iota + 1 // Base musical bed
	StageIntense                  // Heightened arrangement
	StageVocals                   // Full arrangement with vocals
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageDefault:
		return "default"
	case StageIntense:
		return "intense"
	case StageVocals:
		return "vocals"
	default:
		return "unknown"
	}
}

// Valid reports whether the stage is one of the three defined stages.
func (s Stage) Valid() bool {
	return s >= StageDefault && s <= StageVocals
}

// Track represents one decoded audio clip. The PCM buffer is interleaved
// signed 16-bit little-endian at the engine's output rate and channel count.
// Immutable once loaded; the library owns it for the engine's lifetime.
type Track struct {
	Name       string        // File name without directory
	Path       string        // Source file path
	PCM        []byte        // Decoded samples, ready for the output device
	SampleRate int           // Rate the PCM was converted to
	Channels   int           // Channel count the PCM was converted to
	Duration   time.Duration // Length of one loop iteration
}

// Set represents a named group of exactly three tracks of increasing
// intensity. Tracks are ordered by stage.
type Set struct {
	Name   string
	Tracks [StageCount]*Track
}

// TrackFor returns the track for the given stage.
// Returns nil for a stage outside the defined range.
func (s *Set) TrackFor(stage Stage) *Track {
	if !stage.Valid() {
		return nil
	}
	return s.Tracks[stage-1]
}

// Duration returns the summed loop length of all three tracks.
func (s *Set) Duration() time.Duration {
	var total time.Duration
	for _, t := range s.Tracks {
		if t != nil {
			total += t.Duration
		}
	}
	return total
}
