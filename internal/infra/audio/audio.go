// Package audio provides the audio output device and track decoding.
//
// The device is the single exclusive playback resource: it is acquired once
// at engine start and released once at engine stop. Tracks are decoded and
// converted up front so every stream shares the one output format.
package audio

import (
	"github.com/cockroachdb/errors"

	"github.com/stemloop/stemloop/internal/domain/set"
)

// Errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyTrack        = errors.New("track has no samples")
	ErrDeviceTimeout     = errors.New("audio device not ready")
)

// Config holds output device configuration.
type Config struct {
	SampleRate int // Output rate in Hz
	Channels   int // Output channel count (1 or 2)
}

// Stream is one looping playback stream on the output device.
// A stream loops its track indefinitely until closed; only its gain changes.
type Stream interface {
	// SetGain sets the stream gain. Values are clamped to [0, 1].
	SetGain(g float64)
	// Gain returns the last gain set on the stream.
	Gain() float64
	// Close stops the stream and releases it. Safe to call more than once.
	Close()
}

// Device plays looping tracks through a single exclusive audio output.
type Device interface {
	// NewStream begins looping the track at zero gain.
	// The caller ramps the gain to realize fades.
	NewStream(t *set.Track) (Stream, error)
	// SampleRate returns the output rate tracks must be converted to.
	SampleRate() int
	// Channels returns the output channel count tracks must be converted to.
	Channels() int
	// Close releases the audio output.
	Close() error
}
