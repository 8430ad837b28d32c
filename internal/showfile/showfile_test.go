package showfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/show"
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "gala.cue"))
	require.NoError(t, err)

	assert.Equal(t, "Spring Gala", s.Name)
	require.Len(t, s.Cues, 3)

	first := s.Cues[0]
	assert.Equal(t, "Lights up", first.LineText)
	require.Len(t, first.Cameras, 2)
	assert.Equal(t, 2, first.Cameras[0].CameraNumber, "file order is kept")
	assert.Equal(t, show.Shot{Subject: "Host", ShotType: "WS", Notes: "slow push"}, first.Cameras[1].Shot)
	assert.True(t, first.Cameras[1].ExpectedTake)

	assert.Equal(t, "wait for applause", s.Cues[1].Notes)
	assert.Empty(t, s.Cues[1].Cameras)
	assert.Equal(t, "Winner", s.Cues[2].Cameras[0].Subject)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read show file")
}

func TestParse_NameIsOptional(t *testing.T) {
	s, err := Parse("show.cue", []byte(`cues: [{text: "Only"}]`))
	require.NoError(t, err)
	assert.Empty(t, s.Name)
	require.Len(t, s.Cues, 1)
	assert.Equal(t, "Only", s.Cues[0].LineText)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `cues: [`},
		{"no cues", `cues: []`},
		{"missing cues", `name: "x"`},
		{"zero camera", `cues: [{text: "a", cameras: [{camera: 0, subject: "Host"}]}]`},
		{"missing subject", `cues: [{text: "a", cameras: [{camera: 1}]}]`},
		{"blank subject", `cues: [{text: "a", cameras: [{camera: 1, subject: "  "}]}]`},
		{"wrong type", `cues: [{text: 5}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse("show.cue", []byte(tt.src))
			assert.Nil(t, s)
			require.ErrorIs(t, err, show.ErrValidation)

			var verr *show.Error
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
		})
	}
}
