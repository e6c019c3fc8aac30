// Package config provides YAML-based application configuration for the
// shell: storage keys, audio assets, session pacing, host integration and
// logging.
package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Audio   AudioConfig   `yaml:"audio"`
	Session SessionConfig `yaml:"session"`
	SSH     SSHConfig     `yaml:"ssh"`
	Host    HostConfig    `yaml:"host"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig locates the preferences database and names its keys.
type StorageConfig struct {
	Path    string `yaml:"path"`
	BestKey string `yaml:"best_key"`
	MuteKey string `yaml:"mute_key"`
}

// AudioConfig describes the two clips and playback policy.
type AudioConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Music          string        `yaml:"music"`
	GameOver       string        `yaml:"game_over"`
	MusicVolume    float64       `yaml:"music_volume"`
	GameOverVolume float64       `yaml:"game_over_volume"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	SampleRate     int           `yaml:"sample_rate"`
}

// SessionConfig selects the engine and frame pacing.
type SessionConfig struct {
	Engine string `yaml:"engine"`
	FPS    int    `yaml:"fps"`
}

// TickInterval returns the frame duration for FPS.
func (s SessionConfig) TickInterval() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.FPS)
}

// SSHConfig configures the remote play server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// HostConfig configures the host shell handshake and the manifest server.
type HostConfig struct {
	RootURL            string                   `yaml:"root_url"`
	Listen             string                   `yaml:"listen"`
	ReadyURL           string                   `yaml:"ready_url"`
	ReadyTimeout       time.Duration            `yaml:"ready_timeout"`
	AccountAssociation AccountAssociationConfig `yaml:"account_association"`
	Miniapp            MiniappConfig            `yaml:"miniapp"`
}

// AccountAssociationConfig is the signed domain association.
type AccountAssociationConfig struct {
	Header    string `yaml:"header"`
	Payload   string `yaml:"payload"`
	Signature string `yaml:"signature"`
}

// MiniappConfig holds the descriptive manifest fields. Asset URLs are
// derived from HostConfig.RootURL.
type MiniappConfig struct {
	Version               string   `yaml:"version"`
	Name                  string   `yaml:"name"`
	Subtitle              string   `yaml:"subtitle"`
	Description           string   `yaml:"description"`
	SplashBackgroundColor string   `yaml:"splash_background_color"`
	PrimaryCategory       string   `yaml:"primary_category"`
	Tags                  []string `yaml:"tags"`
	Tagline               string   `yaml:"tagline"`
	OGTitle               string   `yaml:"og_title"`
	OGDescription         string   `yaml:"og_description"`
	NoIndex               bool     `yaml:"noindex"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty writes to stderr
}

// Validate normalizes cfg in place and reports settings that cannot work.
// Volumes are clamped to [0,1]; missing keys fall back to the defaults.
func (c *Config) Validate() error {
	def := Default()

	if c.Storage.BestKey == "" {
		c.Storage.BestKey = def.Storage.BestKey
	}
	if c.Storage.MuteKey == "" {
		c.Storage.MuteKey = def.Storage.MuteKey
	}
	if c.Storage.BestKey == c.Storage.MuteKey {
		return fmt.Errorf("config: storage.best_key and storage.mute_key must differ (both %q)", c.Storage.BestKey)
	}

	c.Audio.MusicVolume = clampF(c.Audio.MusicVolume, 0, 1)
	c.Audio.GameOverVolume = clampF(c.Audio.GameOverVolume, 0, 1)
	if c.Audio.RetryDelay < 0 {
		return fmt.Errorf("config: audio.retry_delay must not be negative, got %s", c.Audio.RetryDelay)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("config: audio.sample_rate must not be negative, got %d", c.Audio.SampleRate)
	}

	if c.Session.Engine == "" {
		c.Session.Engine = def.Session.Engine
	}
	if c.Session.FPS <= 0 {
		return fmt.Errorf("config: session.fps must be positive, got %d", c.Session.FPS)
	}

	switch c.Log.Level {
	case "":
		c.Log.Level = def.Log.Level
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}

	return nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
