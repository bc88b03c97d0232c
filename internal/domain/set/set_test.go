package set

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected string
	}{
		{StageDefault, "default"},
		{StageIntense, "intense"},
		{StageVocals, "vocals"},
		{Stage(0), "unknown"},
		{Stage(4), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stage.String())
		})
	}
}

func TestStage_Valid(t *testing.T) {
	assert.True(t, StageDefault.Valid())
	assert.True(t, StageIntense.Valid())
	assert.True(t, StageVocals.Valid())
	assert.False(t, Stage(0).Valid())
	assert.False(t, Stage(4).Valid())
	assert.False(t, Stage(-1).Valid())
}

func TestSet_TrackFor(t *testing.T) {
	s := &Set{
		Name: "sandman",
		Tracks: [StageCount]*Track{
			{Name: "1.ogg"},
			{Name: "2.ogg"},
			{Name: "3.ogg"},
		},
	}

	assert.Equal(t, "1.ogg", s.TrackFor(StageDefault).Name)
	assert.Equal(t, "2.ogg", s.TrackFor(StageIntense).Name)
	assert.Equal(t, "3.ogg", s.TrackFor(StageVocals).Name)
	assert.Nil(t, s.TrackFor(Stage(0)))
	assert.Nil(t, s.TrackFor(Stage(4)))
}

func TestSet_Duration(t *testing.T) {
	s := &Set{
		Tracks: [StageCount]*Track{
			{Duration: 10 * time.Second},
			{Duration: 20 * time.Second},
			{Duration: 30 * time.Second},
		},
	}
	assert.Equal(t, 60*time.Second, s.Duration())

	empty := &Set{}
	assert.Equal(t, time.Duration(0), empty.Duration())
}
