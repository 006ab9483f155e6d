package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	require.NoError(t, s.Validate())
	assert.Equal(t, "output", s.Display.Options().Window)
	assert.Equal(t, 27, s.Display.Options().CancelKey)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	data := `
[log]
level = "debug"
format = "text"

[display]
backend = "fyne"
poll_ms = 30

[render]
interactive = true
image = "photo.png"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, 10, s.Log.MaxSizeMB, "unset keys keep defaults")
	assert.Equal(t, BackendFyne, s.Display.Backend)
	assert.Equal(t, 30, s.Display.PollMs)
	assert.Equal(t, "trackbar", s.Display.ControlsWindow)
	assert.True(t, s.Render.Interactive)
	assert.Equal(t, "photo.png", s.Render.Image)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "[display]\ncolour = \"red\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"bad format", "[log]\nformat = \"xml\"\n"},
		{"bad backend", "[display]\nbackend = \"sdl\"\n"},
		{"negative poll", "[display]\npoll_ms = -1\n"},
		{"zero poll", "[display]\npoll_ms = 0\n"},
		{"cancel key range", "[display]\ncancel_key = 300\n"},
		{"empty window", "[display]\nwindow = \"\"\n"},
		{"not toml", "this is = = not toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			assert.Error(t, Decode([]byte(tt.data), &s))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
