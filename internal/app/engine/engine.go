package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/app/input"
	"github.com/stemloop/stemloop/internal/app/library"
	"github.com/stemloop/stemloop/internal/app/notify"
	"github.com/stemloop/stemloop/internal/app/playback"
	"github.com/stemloop/stemloop/internal/infra/config"
)

// Engine wires the library, state machine, playback controller and input
// sampler into a single cooperative loop. The loop is the only goroutine
// that mutates engine state; hosts interact through context cancellation
// and the notify hub.
type Engine struct {
	cfg        *config.Config
	controller *playback.Controller
	sampler    *input.Sampler
	hub        *notify.Hub
	loader     library.TrackLoader
	rng        *rand.Rand
	runID      string

	mu    sync.RWMutex
	phase Phase
}

// New creates an engine. The loader is wired to the audio decoder in
// production and to a fake in tests.
func New(cfg *config.Config, controller *playback.Controller, sampler *input.Sampler,
	hub *notify.Hub, loader library.TrackLoader) *Engine {
	return &Engine{
		cfg:        cfg,
		controller: controller,
		sampler:    sampler,
		hub:        hub,
		loader:     loader,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		runID:      uuid.New().String(),
		phase:      PhaseNotStarted,
	}
}

// Phase returns the current lifecycle phase. Safe to call from any
// goroutine; presentation layers use it to render a status string.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// Steps returns the number of successful advances so far.
func (e *Engine) Steps() uint64 {
	return e.hub.Steps()
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
}

// Run executes the engine until the context is cancelled. It loads the set
// library, starts a random set and then polls the trigger key at the
// configured cadence. Library-load failures are fatal and returned before
// the loop ever runs; cancellation always ends in a bounded final fade-out.
func (e *Engine) Run(ctx context.Context) error {
	zlog.Info().Msgf("engine: starting (run=%s trigger=%s)",
		e.runID, strings.ToUpper(e.cfg.Engine.TriggerKey))

	lib, err := library.Load(e.cfg.Engine.SetsPath, e.loader)
	if err != nil {
		e.setPhase(PhaseStopped)
		return err
	}
	zlog.Info().Msgf("engine: loaded %d set(s): %s", lib.Len(), strings.Join(lib.Names(), ", "))

	machine := NewMachine(lib, e.controller, e.hub, e.rng)
	if err := machine.StartRandom(); err != nil {
		e.setPhase(PhaseStopped)
		return err
	}

	// The machine stays local to the loop goroutine; hosts observe progress
	// through Phase, Steps and the notify hub
	e.setPhase(PhaseRunning)

	zlog.Info().Msgf("engine: press '%s' to advance (1->2->3->new set)",
		strings.ToUpper(e.cfg.Engine.TriggerKey))

	ticker := time.NewTicker(e.cfg.PollInterval())
	defer ticker.Stop()

	for {
		// Cancellation is observed at the top of every iteration, never
		// mid-advance; stopping takes at most one polling interval plus
		// the shutdown fade.
		select {
		case <-ctx.Done():
			e.stop()
			return nil
		case <-ticker.C:
			if e.sampler.PollEdge() {
				machine.Advance()
			}
		}
	}
}

// stop runs the Stopping -> Stopped path: final fade-out, then release.
func (e *Engine) stop() {
	e.setPhase(PhaseStopping)
	zlog.Info().Msg("engine: stop requested")

	e.controller.Shutdown()

	e.setPhase(PhaseStopped)
	zlog.Info().Msgf("engine: stopped (run=%s steps=%d)", e.runID, e.hub.Steps())
}
