package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/theory"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Root() != "C" || cfg.DisplayKind() != theory.DisplayNotes {
		t.Errorf("defaults = %s/%s, want C/notes", cfg.Root(), cfg.DisplayKind())
	}
	if cfg.ThrottleWindow() != 500*time.Millisecond {
		t.Errorf("ThrottleWindow() = %v, want 500ms", cfg.ThrottleWindow())
	}
	if cfg.Audio.Velocity != 40 || cfg.Audio.NoteDurationMs != 500 || cfg.Audio.OctaveBase != 3 {
		t.Errorf("audio defaults = %+v", cfg.Audio)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.UI.Root != "C" {
		t.Errorf("root = %q, want C", cfg.UI.Root)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.UI.Root = "F#"
	cfg.UI.DisplayKind = "sevenths"
	cfg.Audio.Waveform = "square"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Root() != "F#" || loaded.DisplayKind() != theory.DisplaySevenths || loaded.Audio.Waveform != "square" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"ui":{"root":"Eb"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Root != "Eb" {
		t.Errorf("root = %q, want Eb", cfg.UI.Root)
	}
	if cfg.Audio.SampleRate != audio.DefaultSampleRate || cfg.Server.Port != 8080 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad root", func(c *Config) { c.UI.Root = "H" }},
		{"bad kind", func(c *Config) { c.UI.DisplayKind = "ninths" }},
		{"velocity", func(c *Config) { c.Audio.Velocity = 200 }},
		{"waveform", func(c *Config) { c.Audio.Waveform = "noise" }},
		{"duration", func(c *Config) { c.Audio.NoteDurationMs = 0 }},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 100 }},
		{"octave", func(c *Config) { c.Audio.OctaveBase = 12 }},
		{"throttle", func(c *Config) { c.Audio.ThrottleMs = -1 }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestVoiceOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Velocity = 127
	cfg.Audio.NoteDurationMs = 250
	cfg.Audio.Waveform = "sawtooth"

	ctx := audio.NewContext(1000)
	v := audio.BuildVoice(ctx, cfg.VoiceOptions()...)
	if v.Oscillator.Type != audio.Sawtooth {
		t.Errorf("waveform = %q, want sawtooth", v.Oscillator.Type)
	}
	if v.Gain.Gain < 0.599 || v.Gain.Gain > 0.601 {
		t.Errorf("gain = %f, want 0.6", v.Gain.Gain)
	}
}
