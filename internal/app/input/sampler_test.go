package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemloop/stemloop/internal/infra/config"
)

// scriptProbe replays a fixed held-state sequence, one value per poll.
type scriptProbe struct {
	states []bool
	pos    int
}

func (p *scriptProbe) Held() bool {
	if p.pos >= len(p.states) {
		return false
	}
	v := p.states[p.pos]
	p.pos++
	return v
}

func (p *scriptProbe) Close() {}

func TestPollEdge(t *testing.T) {
	tests := []struct {
		name     string
		states   []bool
		expected []bool
	}{
		{
			name:     "single press and release",
			states:   []bool{false, true, false},
			expected: []bool{false, true, false},
		},
		{
			name:     "held key fires once",
			states:   []bool{true, true, true, true, false},
			expected: []bool{true, false, false, false, false},
		},
		{
			name:     "two distinct presses fire twice",
			states:   []bool{true, true, false, true, true},
			expected: []bool{true, false, false, true, false},
		},
		{
			name:     "never pressed",
			states:   []bool{false, false, false},
			expected: []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSampler(&scriptProbe{states: tt.states})
			got := make([]bool, 0, len(tt.states))
			for range tt.states {
				got = append(got, s.PollEdge())
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPollEdge_NoAutoRepeatOverManyPolls(t *testing.T) {
	states := make([]bool, 500)
	for i := range states {
		states[i] = true
	}
	s := NewSampler(&scriptProbe{states: states})

	edges := 0
	for range states {
		if s.PollEdge() {
			edges++
		}
	}
	assert.Equal(t, 1, edges)
}

func TestParseKey(t *testing.T) {
	_, err := ParseKey("r")
	assert.NoError(t, err)

	_, err = ParseKey("R")
	assert.NoError(t, err)

	_, err = ParseKey("enter")
	assert.Error(t, err)
}

func TestParseModifiers(t *testing.T) {
	mods, err := ParseModifiers([]string{"ctrl", "shift"})
	require.NoError(t, err)
	assert.Len(t, mods, 2)

	_, err = ParseModifiers([]string{"hyper"})
	assert.Error(t, err)

	mods, err = ParseModifiers(nil)
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestKeyNames(t *testing.T) {
	names := KeyNames()
	assert.Contains(t, names, "r")
	assert.Contains(t, names, "q")
	assert.Contains(t, names, "space")
	// Sorted
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestNewProbeFromConfig_UnsupportedType(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Input.Probe = "telepathy"

	_, err = NewProbeFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewProbeFromConfig_BadSettings(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Input.Settings = map[string]any{"modifiers": []any{"hyper"}}

	_, err = NewProbeFromConfig(cfg)
	assert.Error(t, err)
}
