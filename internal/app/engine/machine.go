package engine

import (
	"math/rand"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/app/library"
	"github.com/stemloop/stemloop/internal/app/notify"
	"github.com/stemloop/stemloop/internal/domain/set"
)

// Crossfader issues crossfade transitions. Satisfied by playback.Controller.
type Crossfader interface {
	CrossfadeTo(t *set.Track) error
}

// Machine tracks the active set and stage and computes transitions.
// All mutation happens on the engine loop goroutine; advances are strictly
// serialized, so no locking is needed here.
type Machine struct {
	lib  *library.Library
	ctrl Crossfader
	hub  *notify.Hub
	rng  *rand.Rand

	activeSet string // empty before the first set is chosen
	stage     set.Stage
}

// NewMachine creates a machine over the given library.
func NewMachine(lib *library.Library, ctrl Crossfader, hub *notify.Hub, rng *rand.Rand) *Machine {
	return &Machine{
		lib:  lib,
		ctrl: ctrl,
		hub:  hub,
		rng:  rng,
	}
}

// ActiveSet returns the active set name, empty before the first set.
func (m *Machine) ActiveSet() string {
	return m.activeSet
}

// Stage returns the current stage within the active set.
func (m *Machine) Stage() set.Stage {
	return m.stage
}

// StartRandom picks a random set and starts it at stage 1.
func (m *Machine) StartRandom() error {
	return m.StartSet(m.chooseRandomSet(m.activeSet))
}

// StartSet enters the named set at stage 1 and crossfades to its first track.
func (m *Machine) StartSet(name string) error {
	if _, ok := m.lib.Get(name); !ok {
		return errors.Newf("unknown set %q", name)
	}

	m.activeSet = name
	m.stage = set.StageDefault
	zlog.Info().Msgf("engine: switched to set '%s' (stage %d)", name, m.stage)
	m.play()
	return nil
}

// Advance processes one trigger press: 1 -> 2 -> 3 -> random new set.
// Returns whether a step occurred. Called before the first set is chosen
// it is a no-op and the notifier does not fire.
func (m *Machine) Advance() bool {
	if m.activeSet == "" {
		return false
	}

	switch m.stage {
	case set.StageDefault:
		m.stage = set.StageIntense
		zlog.Info().Msgf("engine: set '%s' -> stage %d (%s)", m.activeSet, m.stage, m.stage)
		m.play()

	case set.StageIntense:
		m.stage = set.StageVocals
		zlog.Info().Msgf("engine: set '%s' -> stage %d (%s)", m.activeSet, m.stage, m.stage)
		m.play()

	case set.StageVocals:
		next := m.chooseRandomSet(m.activeSet)
		zlog.Info().Msgf("engine: finished set '%s', picking new set '%s'", m.activeSet, next)
		if err := m.StartSet(next); err != nil {
			zlog.Error().Msgf("engine: failed to start set '%s': %v", next, err)
		}

	default:
		// Believed unreachable; recover within the same set
		zlog.Warn().Msgf("engine: invalid stage %d on set '%s', resetting to stage %d",
			m.stage, m.activeSet, set.StageDefault)
		m.stage = set.StageDefault
		m.play()
	}

	m.hub.Broadcast()
	return true
}

// play crossfades to the track for the current set and stage.
// Playback failures are logged, not fatal: the state transition stands.
func (m *Machine) play() {
	s, ok := m.lib.Get(m.activeSet)
	if !ok {
		return
	}
	t := s.TrackFor(m.stage)
	if t == nil {
		zlog.Error().Msgf("engine: no track for set '%s' stage %d", m.activeSet, m.stage)
		return
	}

	zlog.Debug().Msgf("engine: playing set '%s' stage %d (%s)", m.activeSet, m.stage, t.Name)
	if err := m.ctrl.CrossfadeTo(t); err != nil {
		zlog.Error().Msgf("engine: playback failed for %s: %v", t.Name, err)
	}
}

// chooseRandomSet draws uniformly from the library. When the library has
// more than one set the excluded name is removed from the pool first, so
// the draw is guaranteed different whenever possible; with a single set the
// self-transition is unavoidable.
func (m *Machine) chooseRandomSet(exclude string) string {
	names := m.lib.Names()
	if exclude != "" && len(names) > 1 {
		pool := names[:0]
		for _, n := range names {
			if n != exclude {
				pool = append(pool, n)
			}
		}
		names = pool
	}
	return names[m.rng.Intn(len(names))]
}
