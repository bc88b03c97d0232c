package audio

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/domain/set"
)

// readyTimeout bounds the wait for the OS audio device at startup.
const readyTimeout = 5 * time.Second

// otoDevice implements Device on top of an oto context.
// oto allows only one context per process, so the device must be a singleton
// for the engine's lifetime.
type otoDevice struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
}

// NewDevice opens the audio output. Failing to open it is fatal to engine
// startup; there is no mid-run device recovery.
func NewDevice(cfg Config) (Device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio device")
	}

	select {
	case <-ready:
	case <-time.After(readyTimeout):
		return nil, ErrDeviceTimeout
	}

	zlog.Debug().Msgf("audio: device ready: rate=%d channels=%d", cfg.SampleRate, cfg.Channels)

	return &otoDevice{
		ctx:        ctx,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}, nil
}

func (d *otoDevice) NewStream(t *set.Track) (Stream, error) {
	if len(t.PCM) == 0 {
		return nil, ErrEmptyTrack
	}

	p := d.ctx.NewPlayer(&loopReader{pcm: t.PCM})
	p.SetVolume(0)
	p.Play()

	return &otoStream{player: p}, nil
}

func (d *otoDevice) SampleRate() int { return d.sampleRate }
func (d *otoDevice) Channels() int   { return d.channels }

// Close suspends the context. oto contexts cannot be re-created within the
// same process, so this is only called on engine shutdown.
func (d *otoDevice) Close() error {
	return d.ctx.Suspend()
}

// otoStream wraps an oto player as a Stream.
type otoStream struct {
	mu     sync.Mutex
	player *oto.Player
	gain   float64
	closed bool
}

func (s *otoStream) SetGain(g float64) {
	if g < 0 {
		g = 0
	} else if g > 1 {
		g = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gain = g
	s.player.SetVolume(g)
}

func (s *otoStream) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

func (s *otoStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if err := s.player.Close(); err != nil {
		zlog.Warn().Msgf("audio: failed to close player: %v", err)
	}
}
