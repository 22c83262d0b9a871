package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-visualiser/theme"
)

// DisplayConfig holds the piano roll settings
type DisplayConfig struct {
	// TravelSeconds is the time for a note to scroll down to the keys
	TravelSeconds      float64 `json:"travelSeconds"`
	ScrollingNotes     bool    `json:"scrollingNotes"`
	RollHeight         int     `json:"rollHeight"`
	ShowOctaveDividers bool    `json:"showOctaveDividers"`
	ShowPlayIcon       bool    `json:"showPlayIcon"`
	Palette            string  `json:"palette,omitempty"` // GPL file
}

// OutputConfig defines the MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"` // empty = first available port
}

// LibraryConfig remembers where songs come from
type LibraryConfig struct {
	SongsDir string `json:"songsDir,omitempty"`
	LastSong string `json:"lastSong,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Display    DisplayConfig  `json:"display"`
	Output     OutputConfig   `json:"output,omitempty"`
	Library    LibraryConfig  `json:"library,omitempty"`
	Channels   map[int]string `json:"channels,omitempty"` // channel -> "#rrggbb"
	ColourSeed uint64         `json:"colourSeed,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			TravelSeconds:      2.0,
			ScrollingNotes:     true,
			RollHeight:         24,
			ShowOctaveDividers: true,
			ShowPlayIcon:       true,
		},
	}
}

// Validate checks values the player and renderer depend on
func (c *Config) Validate() error {
	if c.Display.TravelSeconds <= 0 {
		return fmt.Errorf("display.travelSeconds must be positive, got %v", c.Display.TravelSeconds)
	}
	if c.Display.RollHeight < 1 {
		return fmt.Errorf("display.rollHeight must be at least 1, got %d", c.Display.RollHeight)
	}
	for ch, colour := range c.Channels {
		if ch < 0 || ch > 15 {
			return fmt.Errorf("channels: channel %d out of range 0-15", ch)
		}
		if _, err := theme.ParseHex(colour); err != nil {
			return fmt.Errorf("channels: channel %d: %w", ch, err)
		}
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-visualiser"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
