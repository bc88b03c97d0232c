package input

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.design/x/hotkey"
)

// HotkeyProbe tracks the trigger key's held state through an OS-level
// hotkey subscription. Keydown and keyup events feed an atomic flag, so
// Held never blocks. On macOS the process must run the subscription on the
// main thread; the CLI arranges that.
type HotkeyProbe struct {
	hk   *hotkey.Hotkey
	held atomic.Bool
	done chan struct{}
}

// NewHotkeyProbe registers a global hotkey for the named key and starts
// watching its state.
func NewHotkeyProbe(key string, modifiers []string) (*HotkeyProbe, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	mods, err := ParseModifiers(modifiers)
	if err != nil {
		return nil, err
	}

	hk := hotkey.New(mods, k)
	if err := hk.Register(); err != nil {
		return nil, errors.Wrapf(err, "failed to register hotkey %q", key)
	}

	p := &HotkeyProbe{
		hk:   hk,
		done: make(chan struct{}),
	}
	go p.watch()

	zlog.Debug().Msgf("input: registered hotkey %q (modifiers=%v)", key, modifiers)
	return p, nil
}

// watch mirrors keydown/keyup events into the held flag.
func (p *HotkeyProbe) watch() {
	for {
		select {
		case <-p.done:
			return
		case <-p.hk.Keydown():
			p.held.Store(true)
		case <-p.hk.Keyup():
			p.held.Store(false)
		}
	}
}

// Held reports whether the key is currently pressed.
func (p *HotkeyProbe) Held() bool {
	return p.held.Load()
}

// Close unregisters the hotkey and stops the watcher.
func (p *HotkeyProbe) Close() {
	close(p.done)
	if err := p.hk.Unregister(); err != nil {
		zlog.Warn().Msgf("input: failed to unregister hotkey: %v", err)
	}
}
