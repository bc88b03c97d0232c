package input

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.design/x/hotkey"
)

// keyCodes is the fixed allow-list of recognized trigger keys.
var keyCodes = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space": hotkey.KeySpace,
}

// modifierCodes maps modifier names available on every supported platform.
var modifierCodes = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
}

// ParseKey resolves a trigger key name to a key code.
func ParseKey(name string) (hotkey.Key, error) {
	k, ok := keyCodes[strings.ToLower(name)]
	if !ok {
		return 0, errors.Newf("unrecognized trigger key %q (see list-keys)", name)
	}
	return k, nil
}

// ParseModifiers resolves modifier names to modifier codes.
func ParseModifiers(names []string) ([]hotkey.Modifier, error) {
	mods := make([]hotkey.Modifier, 0, len(names))
	for _, n := range names {
		m, ok := modifierCodes[strings.ToLower(n)]
		if !ok {
			return nil, errors.Newf("unrecognized modifier %q", n)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// KeyNames returns the recognized trigger key names, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keyCodes))
	for n := range keyCodes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
