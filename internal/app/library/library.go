// Package library builds the immutable set library from a directory tree.
//
// The root directory contains one subdirectory per set. Each subdirectory
// must yield exactly three loadable audio files; the first three in
// lexicographic filename order become the default, intense and vocals
// stages. Candidates that fall short are rejected whole, never partially.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/domain/set"
)

// Recognized audio file extensions.
var audioExtensions = []string{".wav", ".ogg", ".mp3"}

// Errors
var (
	ErrRootNotFound = errors.New("sets root not found")
	ErrNoSetsFound  = errors.New("no valid sets found")
)

// TrackLoader loads one audio file into a Track.
// The engine wires this to the audio decoder; tests substitute a fake.
type TrackLoader func(path string) (*set.Track, error)

// Library is an immutable mapping from set name to Set.
// Built once at engine start; never mutated afterward.
type Library struct {
	root  string
	sets  map[string]*set.Set
	names []string // sorted for deterministic iteration
}

// Load scans the root directory and builds the library.
// Individual load failures are skipped with a warning; the scan always
// completes so diagnostics cover every candidate. Returns ErrRootNotFound
// if the root is missing and ErrNoSetsFound if no candidate survives.
func Load(root string, load TrackLoader) (*Library, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrRootNotFound, "%s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sets root %s", root)
	}

	lib := &Library{
		root: root,
		sets: make(map[string]*set.Set),
	}
	var rejected []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		s, reason := loadCandidate(filepath.Join(root, name), name, load)
		if s == nil {
			zlog.Warn().Msgf("library: skipping set '%s': %s", name, reason)
			rejected = append(rejected, name)
			continue
		}

		lib.sets[name] = s
		lib.names = append(lib.names, name)
		zlog.Debug().Msgf("library: loaded set '%s' (%v total)", name, s.Duration().Round(0))
	}

	sort.Strings(lib.names)

	if len(rejected) > 0 {
		zlog.Warn().Msgf("library: rejected %d candidate(s): %s",
			len(rejected), strings.Join(rejected, ", "))
	}
	if len(lib.sets) == 0 {
		return nil, errors.Wrapf(ErrNoSetsFound, "%s", root)
	}

	return lib, nil
}

// loadCandidate loads one candidate set directory.
// Returns a nil set and a human-readable reason on rejection.
func loadCandidate(dir, name string, load TrackLoader) (*set.Set, string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "unreadable directory"
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isAudioFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// Stage order is filename order; anything past the third file is noise
	if len(files) > set.StageCount {
		files = files[:set.StageCount]
	}

	var tracks []*set.Track
	for _, f := range files {
		path := filepath.Join(dir, f)
		t, err := load(path)
		if err != nil {
			zlog.Warn().Msgf("library: failed to load %s: %v", path, err)
			continue
		}
		tracks = append(tracks, t)
	}

	if len(tracks) != set.StageCount {
		return nil, fmt.Sprintf("needs exactly %d valid audio files, has %d",
			set.StageCount, len(tracks))
	}

	s := &set.Set{Name: name}
	copy(s.Tracks[:], tracks)
	return s, ""
}

// isAudioFile reports whether the filename carries a recognized extension.
func isAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range audioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Root returns the library root directory.
func (l *Library) Root() string {
	return l.root
}

// Len returns the number of sets in the library.
func (l *Library) Len() int {
	return len(l.sets)
}

// Names returns the set names in sorted order.
func (l *Library) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Get returns the named set.
func (l *Library) Get(name string) (*set.Set, bool) {
	s, ok := l.sets[name]
	return s, ok
}
