// Package config loads application settings (TOML) and pipeline definitions (HCL).
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"layer-pipeline/internal/core"
)

const (
	BackendHighGUI = "highgui"
	BackendFyne    = "fyne"
)

type Settings struct {
	Log     LogSettings     `toml:"log"`
	Display DisplaySettings `toml:"display"`
	Render  RenderSettings  `toml:"render"`
}

type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
	// File enables a rotating log file instead of stdout
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type DisplaySettings struct {
	Backend        string `toml:"backend"`
	Window         string `toml:"window"`
	ControlsWindow string `toml:"controls_window"`
	PollMs         int    `toml:"poll_ms"`
	CancelKey      int    `toml:"cancel_key"`
}

type RenderSettings struct {
	Interactive bool   `toml:"interactive"`
	Image       string `toml:"image"`
	Pipeline    string `toml:"pipeline"`
}

func Default() Settings {
	opts := core.DefaultOptions()
	return Settings{
		Log: LogSettings{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Display: DisplaySettings{
			Backend:        BackendHighGUI,
			Window:         opts.Window,
			ControlsWindow: opts.ControlsWindow,
			PollMs:         opts.PollMs,
			CancelKey:      opts.CancelKey,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := Decode(data, &s); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Decode overlays TOML data on s and validates the result
func Decode(data []byte, s *Settings) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return err
	}
	return s.Validate()
}

func (s Settings) Validate() error {
	if _, err := logrus.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if s.Log.Format != "text" && s.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	if s.Log.MaxSizeMB < 0 || s.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}

	switch s.Display.Backend {
	case BackendHighGUI, BackendFyne:
	default:
		return fmt.Errorf("display.backend must be %s or %s, got %q", BackendHighGUI, BackendFyne, s.Display.Backend)
	}
	if s.Display.Window == "" || s.Display.ControlsWindow == "" {
		return fmt.Errorf("display window names must not be empty")
	}
	// a zero wait blocks until a key arrives and never sees cancellation
	if s.Display.PollMs < 1 {
		return fmt.Errorf("display.poll_ms must be at least 1, got %d", s.Display.PollMs)
	}
	if s.Display.CancelKey < 0 || s.Display.CancelKey > 255 {
		return fmt.Errorf("display.cancel_key must be in [0,255], got %d", s.Display.CancelKey)
	}
	return nil
}

// Options converts the display settings to render options
func (d DisplaySettings) Options() core.Options {
	return core.Options{
		Window:         d.Window,
		ControlsWindow: d.ControlsWindow,
		PollMs:         d.PollMs,
		CancelKey:      d.CancelKey,
	}
}
