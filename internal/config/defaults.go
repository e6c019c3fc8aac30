package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/basetetris.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Default returns the built-in configuration. It mirrors the embedded YAML
// and is used when that cannot be parsed.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Path:    "~/.basetetris/prefs.db",
			BestKey: "base-tetris-high-score",
			MuteKey: "base-tetris-muted",
		},
		Audio: AudioConfig{
			Enabled:        true,
			Music:          "assets/music/music1.mp3",
			GameOver:       "assets/music/gameOver.ogg",
			MusicVolume:    0.4,
			GameOverVolume: 0.6,
			RetryDelay:     100 * time.Millisecond,
			SampleRate:     44100,
		},
		Session: SessionConfig{
			Engine: "replay",
			FPS:    60,
		},
		SSH: SSHConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
		Host: HostConfig{
			RootURL:      "https://tetris-onchain.vercel.app",
			Listen:       ":3000",
			ReadyTimeout: 2 * time.Second,
			AccountAssociation: AccountAssociationConfig{
				Header:    "eyJmaWQiOjkzNTU1MSwidHlwZSI6ImF1dGgiLCJrZXkiOiIweGM1OTU2Njc0YzBEYWM2MjEwNjA4OTE1OTc0ZEI0OWI2MDUyMTM5MDYifQ",
				Payload:   "eyJkb21haW4iOiJ0ZXRyaXMtb25jaGFpbi52ZXJjZWwuYXBwIn0",
				Signature: "1GvRVRHIfTMAuo0AuEDYZMtMG6UH04alUav+KfVhRURGhHXt3OCQet/TMRb2S0bmG+G48uZ0PN+BYOgRd7/9wxw=",
			},
			Miniapp: MiniappConfig{
				Version:               "1",
				Name:                  "Base Tetris",
				Subtitle:              "Classic Block Puzzle Game",
				Description:           "Play the classic Tetris game on Base! Stack blocks, clear lines, and compete for high scores.",
				SplashBackgroundColor: "#0d0d1a",
				PrimaryCategory:       "games",
				Tags:                  []string{"tetris", "puzzle", "arcade", "base", "blockchain"},
				Tagline:               "Stack, Clear, Compete!",
				OGTitle:               "Base Tetris",
				OGDescription:         "Play classic Tetris on Base - Stack blocks and clear lines!",
			},
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.basetetris/basetetris.log",
		},
	}
}
