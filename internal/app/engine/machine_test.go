package engine

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemloop/stemloop/internal/app/library"
	"github.com/stemloop/stemloop/internal/app/notify"
	"github.com/stemloop/stemloop/internal/domain/set"
)

// recordingCrossfader records the tracks it was asked to play.
type recordingCrossfader struct {
	tracks []string
}

func (c *recordingCrossfader) CrossfadeTo(t *set.Track) error {
	c.tracks = append(c.tracks, t.Name)
	return nil
}

// buildLibrary creates an on-disk library with the given set names, each
// holding tracks <set>_1.ogg, <set>_2.ogg, <set>_3.ogg.
func buildLibrary(t *testing.T, names ...string) *library.Library {
	t.Helper()

	root := t.TempDir()
	for _, name := range names {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		for _, suffix := range []string{"_1.ogg", "_2.ogg", "_3.ogg"} {
			path := filepath.Join(dir, name+suffix)
			require.NoError(t, os.WriteFile(path, []byte{0}, 0644))
		}
	}

	lib, err := library.Load(root, func(path string) (*set.Track, error) {
		return &set.Track{Name: filepath.Base(path), Path: path, PCM: []byte{0, 0}}, nil
	})
	require.NoError(t, err)
	return lib
}

func newTestMachine(t *testing.T, names ...string) (*Machine, *recordingCrossfader, *notify.Hub) {
	t.Helper()
	ctrl := &recordingCrossfader{}
	hub := notify.NewHub()
	m := NewMachine(buildLibrary(t, names...), ctrl, hub, rand.New(rand.NewSource(1)))
	return m, ctrl, hub
}

func TestMachine_AdvanceBeforeStartIsNoOp(t *testing.T) {
	m, ctrl, hub := newTestMachine(t, "alpha")

	assert.False(t, m.Advance())
	assert.Empty(t, m.ActiveSet())
	assert.Empty(t, ctrl.tracks)
	assert.Equal(t, uint64(0), hub.Steps())
}

func TestMachine_StartSet(t *testing.T) {
	m, ctrl, hub := newTestMachine(t, "alpha")

	require.NoError(t, m.StartSet("alpha"))
	assert.Equal(t, "alpha", m.ActiveSet())
	assert.Equal(t, set.StageDefault, m.Stage())
	assert.Equal(t, []string{"alpha_1.ogg"}, ctrl.tracks)
	// Starting a set is not an advance
	assert.Equal(t, uint64(0), hub.Steps())
}

func TestMachine_StartSet_Unknown(t *testing.T) {
	m, _, _ := newTestMachine(t, "alpha")
	assert.Error(t, m.StartSet("missing"))
}

func TestMachine_AdvanceWithinSet(t *testing.T) {
	m, ctrl, hub := newTestMachine(t, "alpha", "beta")
	require.NoError(t, m.StartSet("alpha"))

	assert.True(t, m.Advance())
	assert.Equal(t, "alpha", m.ActiveSet())
	assert.Equal(t, set.StageIntense, m.Stage())

	assert.True(t, m.Advance())
	assert.Equal(t, "alpha", m.ActiveSet())
	assert.Equal(t, set.StageVocals, m.Stage())

	assert.Equal(t, []string{"alpha_1.ogg", "alpha_2.ogg", "alpha_3.ogg"}, ctrl.tracks)
	assert.Equal(t, uint64(2), hub.Steps())
}

func TestMachine_AdvanceFromVocalsSwitchesSet(t *testing.T) {
	m, _, hub := newTestMachine(t, "alpha", "beta")
	require.NoError(t, m.StartSet("alpha"))

	m.Advance()
	m.Advance()
	assert.True(t, m.Advance())

	// With two sets the exclusion guarantees the other one
	assert.Equal(t, "beta", m.ActiveSet())
	assert.Equal(t, set.StageDefault, m.Stage())
	assert.Equal(t, uint64(3), hub.Steps())
}

func TestMachine_SingleSetSelfTransition(t *testing.T) {
	m, ctrl, _ := newTestMachine(t, "only")
	require.NoError(t, m.StartSet("only"))

	// 1->2->3->1->2->3->1 forever on the same set
	for i := 0; i < 7; i++ {
		assert.True(t, m.Advance())
		assert.Equal(t, "only", m.ActiveSet())
	}
	assert.Equal(t, set.StageIntense, m.Stage())
	assert.Equal(t, []string{
		"only_1.ogg", "only_2.ogg", "only_3.ogg",
		"only_1.ogg", "only_2.ogg", "only_3.ogg",
		"only_1.ogg", "only_2.ogg",
	}, ctrl.tracks)
}

func TestMachine_EndToEndTrace(t *testing.T) {
	// Library {alpha, beta}, start on alpha, 4 presses:
	// (alpha,1) -> (alpha,2) -> (alpha,3) -> (beta,1) -> (beta,2)
	m, ctrl, hub := newTestMachine(t, "alpha", "beta")
	require.NoError(t, m.StartSet("alpha"))

	type snapshot struct {
		name  string
		stage set.Stage
	}
	trace := []snapshot{{m.ActiveSet(), m.Stage()}}
	for i := 0; i < 4; i++ {
		require.True(t, m.Advance())
		trace = append(trace, snapshot{m.ActiveSet(), m.Stage()})
	}

	assert.Equal(t, []snapshot{
		{"alpha", set.StageDefault},
		{"alpha", set.StageIntense},
		{"alpha", set.StageVocals},
		{"beta", set.StageDefault},
		{"beta", set.StageIntense},
	}, trace)
	assert.Equal(t, uint64(4), hub.Steps())
	assert.Equal(t, []string{
		"alpha_1.ogg", "alpha_2.ogg", "alpha_3.ogg", "beta_1.ogg", "beta_2.ogg",
	}, ctrl.tracks)
}

func TestMachine_DefensiveStageReset(t *testing.T) {
	// Should be unreachable under correct use; the machine recovers by
	// replaying stage 1 of the same set.
	m, ctrl, hub := newTestMachine(t, "alpha", "beta")
	require.NoError(t, m.StartSet("alpha"))

	m.stage = set.Stage(42)
	assert.True(t, m.Advance())

	assert.Equal(t, "alpha", m.ActiveSet())
	assert.Equal(t, set.StageDefault, m.Stage())
	assert.Equal(t, []string{"alpha_1.ogg", "alpha_1.ogg"}, ctrl.tracks)
	assert.Equal(t, uint64(1), hub.Steps())
}

func TestMachine_ChooseRandomSet_Uniformity(t *testing.T) {
	m, _, _ := newTestMachine(t, "a", "b", "c", "d")

	seen := make(map[string]int)
	for i := 0; i < 400; i++ {
		seen[m.chooseRandomSet("a")]++
	}

	assert.NotContains(t, seen, "a")
	assert.Len(t, seen, 3)
	for name, n := range seen {
		assert.Greater(t, n, 50, "set %s drawn too rarely", name)
	}
}

func TestMachine_StartRandom(t *testing.T) {
	m, ctrl, _ := newTestMachine(t, "alpha", "beta")

	require.NoError(t, m.StartRandom())
	assert.NotEmpty(t, m.ActiveSet())
	assert.Equal(t, set.StageDefault, m.Stage())
	assert.Len(t, ctrl.tracks, 1)
}
