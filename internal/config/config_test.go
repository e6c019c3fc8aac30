package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate points the user and local search paths at empty temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEmbeddedMatchesDefault(t *testing.T) {
	got := embedded()
	want := Default()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("embedded YAML and Default() differ:\n got %+v\nwant %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	isolate(t)

	cfg, source, err := LoadWithSource("")
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if source != "embedded" {
		t.Errorf("source = %q, expected embedded", source)
	}
	if cfg.Audio.RetryDelay != 100*time.Millisecond {
		t.Errorf("RetryDelay = %v, expected 100ms", cfg.Audio.RetryDelay)
	}
	if cfg.Storage.BestKey != "base-tetris-high-score" {
		t.Errorf("BestKey = %q", cfg.Storage.BestKey)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(work, LocalPath), "session:\n  fps: 30\n")
	cfg, source, err := LoadWithSource("")
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if source != LocalPath || cfg.Session.FPS != 30 {
		t.Errorf("local config: source %q fps %d", source, cfg.Session.FPS)
	}

	userPath := filepath.Join(home, ".basetetris", "config.yaml")
	writeFile(t, userPath, "session:\n  fps: 24\n")
	cfg, source, err = LoadWithSource("")
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if source != userPath || cfg.Session.FPS != 24 {
		t.Errorf("user config: source %q fps %d", source, cfg.Session.FPS)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, custom, "session:\n  fps: 12\n")
	cfg, source, err = LoadWithSource(custom)
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if source != custom || cfg.Session.FPS != 12 {
		t.Errorf("custom config: source %q fps %d", source, cfg.Session.FPS)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	isolate(t)
	custom := filepath.Join(t.TempDir(), "partial.yaml")
	writeFile(t, custom, "audio:\n  music_volume: 0.9\n")

	cfg, err := Load(custom)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Audio.MusicVolume != 0.9 {
		t.Errorf("MusicVolume = %v, expected 0.9", cfg.Audio.MusicVolume)
	}
	if cfg.Audio.GameOverVolume != 0.6 {
		t.Errorf("GameOverVolume = %v, expected default 0.6", cfg.Audio.GameOverVolume)
	}
	if cfg.Session.FPS != 60 {
		t.Errorf("FPS = %d, expected default 60", cfg.Session.FPS)
	}
}

func TestLoadSkipsMalformedUserConfig(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".basetetris", "config.yaml"), "session: [not, a, map")

	_, source, err := LoadWithSource("")
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if source != "embedded" {
		t.Errorf("source = %q, expected embedded", source)
	}
}

func TestLoadCustomErrors(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing custom path should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "audio: [")
	if _, err := Load(bad); err == nil {
		t.Error("Load() with malformed custom file should fail")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	writeFile(t, invalid, "session:\n  fps: 0\n")
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "fps") {
		t.Errorf("Load() with fps 0 = %v, expected fps error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
		check   func(*testing.T, Config)
	}{
		{
			name:   "clamps volumes",
			mutate: func(c *Config) { c.Audio.MusicVolume = 3; c.Audio.GameOverVolume = -1 },
			check: func(t *testing.T, c Config) {
				if c.Audio.MusicVolume != 1 || c.Audio.GameOverVolume != 0 {
					t.Errorf("volumes = %v, %v", c.Audio.MusicVolume, c.Audio.GameOverVolume)
				}
			},
		},
		{
			name:   "fills empty keys",
			mutate: func(c *Config) { c.Storage.BestKey = ""; c.Storage.MuteKey = ""; c.Session.Engine = "" },
			check: func(t *testing.T, c Config) {
				if c.Storage.BestKey != "base-tetris-high-score" || c.Storage.MuteKey != "base-tetris-muted" {
					t.Errorf("keys = %q, %q", c.Storage.BestKey, c.Storage.MuteKey)
				}
				if c.Session.Engine != "replay" {
					t.Errorf("Engine = %q", c.Session.Engine)
				}
			},
		},
		{
			name:    "same keys",
			mutate:  func(c *Config) { c.Storage.MuteKey = c.Storage.BestKey },
			wantErr: "must differ",
		},
		{
			name:    "negative fps",
			mutate:  func(c *Config) { c.Session.FPS = -5 },
			wantErr: "session.fps",
		},
		{
			name:    "negative retry",
			mutate:  func(c *Config) { c.Audio.RetryDelay = -time.Second },
			wantErr: "retry_delay",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("Validate() = %v, expected error containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			tc.check(t, cfg)
		})
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		fps      int
		expected time.Duration
	}{
		{60, time.Second / 60},
		{30, time.Second / 30},
		{0, time.Second / 60},
	}
	for _, tc := range tests {
		if got := (SessionConfig{FPS: tc.fps}).TickInterval(); got != tc.expected {
			t.Errorf("TickInterval(%d) = %v, expected %v", tc.fps, got, tc.expected)
		}
	}
}
