// Package config persists user preferences under ~/.config/modalkit.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/theory"
	"github.com/james-see/modalkit/pkg/throttle"
)

// AudioConfig holds the synthesis settings
type AudioConfig struct {
	Velocity       int    `json:"velocity"`
	Waveform       string `json:"waveform"`
	NoteDurationMs int    `json:"noteDurationMs"`
	SampleRate     int    `json:"sampleRate"`
	OctaveBase     int    `json:"octaveBase"`
	ThrottleMs     int    `json:"throttleMs"`
}

// UIConfig stores the last selections
type UIConfig struct {
	Root        string `json:"root"`
	DisplayKind string `json:"displayKind"`
}

// ServerConfig configures the API server
type ServerConfig struct {
	Port        int      `json:"port"`
	CORSOrigins []string `json:"corsOrigins,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	UI       UIConfig     `json:"ui"`
	Audio    AudioConfig  `json:"audio"`
	Server   ServerConfig `json:"server"`
	LogLevel string       `json:"logLevel"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Root:        "C",
			DisplayKind: string(theory.DisplayNotes),
		},
		Audio: AudioConfig{
			Velocity:       audio.DefaultVelocity,
			Waveform:       string(audio.DefaultWaveform),
			NoteDurationMs: int(audio.DefaultNoteDuration * 1000),
			SampleRate:     audio.DefaultSampleRate,
			OctaveBase:     theory.DefaultOctaveBase,
			ThrottleMs:     int(throttle.DefaultWindow / time.Millisecond),
		},
		Server: ServerConfig{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "modalkit"), nil
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

// LoadFrom reads the config at path. Fields absent from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks every field that is parsed later
func (c *Config) Validate() error {
	if _, err := theory.ParsePitchClass(c.UI.Root); err != nil {
		return fmt.Errorf("ui.root: %w", err)
	}
	if _, err := theory.ParseDisplayKind(c.UI.DisplayKind); err != nil {
		return fmt.Errorf("ui.displayKind: %w", err)
	}
	if c.Audio.Velocity < 0 || c.Audio.Velocity > audio.MaxVelocity {
		return fmt.Errorf("audio.velocity %d out of range 0-127", c.Audio.Velocity)
	}
	if _, err := audio.ParseWaveform(c.Audio.Waveform); err != nil {
		return fmt.Errorf("audio.waveform: %w", err)
	}
	if c.Audio.NoteDurationMs <= 0 {
		return fmt.Errorf("audio.noteDurationMs must be positive")
	}
	if c.Audio.SampleRate < 8000 {
		return fmt.Errorf("audio.sampleRate %d too low", c.Audio.SampleRate)
	}
	if c.Audio.OctaveBase < 0 || c.Audio.OctaveBase > 8 {
		return fmt.Errorf("audio.octaveBase %d out of range 0-8", c.Audio.OctaveBase)
	}
	if c.Audio.ThrottleMs < 0 {
		return fmt.Errorf("audio.throttleMs must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Root returns the configured root; call Validate first.
func (c *Config) Root() theory.PitchClass {
	pc, err := theory.ParsePitchClass(c.UI.Root)
	if err != nil {
		return "C"
	}
	return pc
}

// DisplayKind returns the configured display kind, notes when invalid
func (c *Config) DisplayKind() theory.DisplayKind {
	k, err := theory.ParseDisplayKind(c.UI.DisplayKind)
	if err != nil {
		return theory.DisplayNotes
	}
	return k
}

// ThrottleWindow returns the limiter window
func (c *Config) ThrottleWindow() time.Duration {
	return time.Duration(c.Audio.ThrottleMs) * time.Millisecond
}

// VoiceOptions returns the synthesis options for every voice
func (c *Config) VoiceOptions() []audio.VoiceOption {
	opts := []audio.VoiceOption{
		audio.WithVelocity(c.Audio.Velocity),
		audio.WithDuration(float64(c.Audio.NoteDurationMs) / 1000),
	}
	if w, err := audio.ParseWaveform(c.Audio.Waveform); err == nil {
		opts = append(opts, audio.WithWaveform(w))
	}
	return opts
}
