package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/domain/set"
	"github.com/stemloop/stemloop/internal/infra/audio"
)

// fadeTick is the gain ramp step interval.
const fadeTick = 10 * time.Millisecond

// shutdownGrace pads the bounded wait for the final fade-out.
const shutdownGrace = 100 * time.Millisecond

// Config holds controller configuration.
type Config struct {
	Crossfade    time.Duration // Transition fade duration
	ShutdownFade time.Duration // Final fade-out duration
}

// Controller owns the playback resource for the engine's lifetime and
// executes crossfade transitions on it. There is no queue: starting a new
// track always supersedes the previous one, and at most one logical current
// track is tracked. Two tracks overlap only inside the bounded crossfade
// window.
type Controller struct {
	mu sync.Mutex

	device audio.Device
	config Config

	current audio.Stream
	track   *set.Track
	state   State
}

// NewController creates a controller for the given output device.
func NewController(device audio.Device, config Config) *Controller {
	return &Controller{
		device: device,
		config: config,
		state:  StateIdle,
	}
}

// CrossfadeTo starts the track looping with a fade-in and, if a track was
// already playing, fades that one out over the same duration. The fades
// proceed on their own timeline; this returns immediately.
func (c *Controller) CrossfadeTo(t *set.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.device.NewStream(t)
	if err != nil {
		return errors.Wrapf(err, "failed to start track %s", t.Name)
	}

	if c.current != nil {
		zlog.Debug().Msgf("playback: crossfade %s -> %s over %v",
			c.track.Name, t.Name, c.config.Crossfade)
		fade(c.current, 0, c.config.Crossfade, true)
	} else {
		zlog.Debug().Msgf("playback: fade in %s over %v", t.Name, c.config.Crossfade)
	}
	fade(next, 1, c.config.Crossfade, false)

	c.current = next
	c.track = t
	c.state = StatePlaying
	return nil
}

// Shutdown fades the current track out over the shutdown duration and waits,
// bounded, for the fade to finish before releasing the stream. Calling it
// with nothing playing is a no-op, so it is idempotent.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	stream, track := c.current, c.track
	c.current = nil
	c.track = nil
	c.state = StateIdle
	c.mu.Unlock()

	if stream == nil {
		return
	}

	zlog.Info().Msgf("playback: final fade-out of %s over %v", track.Name, c.config.ShutdownFade)
	done := fade(stream, 0, c.config.ShutdownFade, true)
	select {
	case <-done:
	case <-time.After(c.config.ShutdownFade + shutdownGrace):
		stream.Close()
	}
}

// GetState returns the current controller state.
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GetCurrentTrack returns the currently playing track.
func (c *Controller) GetCurrentTrack() (*set.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return nil, false
	}
	return c.track, true
}

// fade ramps the stream gain from its current value to the target over d,
// stepping on a fixed tick. When release is set the stream is closed after
// the ramp. The returned channel closes when the fade has completed.
func fade(s audio.Stream, target float64, d time.Duration, release bool) <-chan struct{} {
	done := make(chan struct{})

	from := s.Gain()
	steps := int(d / fadeTick)
	if steps < 1 {
		steps = 1
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(fadeTick)
		defer ticker.Stop()

		for i := 1; i <= steps; i++ {
			<-ticker.C
			s.SetGain(from + (target-from)*float64(i)/float64(steps))
		}
		if release {
			s.Close()
		}
	}()

	return done
}
