package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/base-tetris/internal/audio"
	"github.com/vovakirdan/base-tetris/internal/audio/device"
	"github.com/vovakirdan/base-tetris/internal/config"
	"github.com/vovakirdan/base-tetris/internal/host"
	"github.com/vovakirdan/base-tetris/internal/platform/tui"
	"github.com/vovakirdan/base-tetris/internal/registry"
	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/session"
)

var (
	flagEngine     string
	flagMuteDevice bool
	flagSkipReady  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start the game in the terminal.

Controls:
  Enter        - Start
  Left/Right   - Move
  Down         - Soft drop
  Space        - Hard drop
  X/Up, Z      - Rotate clockwise, counterclockwise
  C            - Hold
  P            - Pause/Resume
  M            - Mute/Unmute
  H/Esc        - Home
  R            - Play again (after game over)
  Q/Ctrl+C     - Quit

Examples:
  basetetris play
  basetetris play --fps 30
  basetetris play --mute-device
  basetetris play --engine replay --db ./prefs.db`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, playCmd} {
		cmd.Flags().StringVar(&flagEngine, "engine", "", "Engine ID to mount (overrides config)")
		cmd.Flags().BoolVar(&flagMuteDevice, "mute-device", false, "Do not open the sound device")
		cmd.Flags().BoolVar(&flagSkipReady, "no-ready", false, "Do not send the host ready signal")
	}
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagEngine != "" {
		cfg.Session.Engine = flagEngine
	}

	// Check if engine exists
	if !registry.Exists(cfg.Session.Engine) {
		fmt.Fprintf(os.Stderr, "Error: unknown engine %q\n", cfg.Session.Engine)
		fmt.Fprintln(os.Stderr, "Run 'basetetris engines' to see available engines.")
		os.Exit(1)
	}

	logger, release := newLogger(cfg.Log, "basetetris", true)
	defer release()

	prefs, store := openPrefs(cfg.Storage, logger)
	if store != nil {
		defer store.Close()
	}

	music, stinger := openClips(cfg.Audio, logger)
	player := audio.New(music, stinger, prefs, audioConfig(cfg), logger)
	best := score.Open(prefs, cfg.Storage.BestKey, logger)

	opts := []session.Option{session.WithLogger(logger)}
	if store != nil {
		opts = append(opts, session.WithGameOverHook(session.RecordHistory(store, cfg.Session.Engine, logger)))
	}
	ctrl := session.New(session.FromRegistry(cfg.Session.Engine), player, best, opts...)

	if !flagSkipReady {
		r := host.NewReadier(cfg.Host.ReadyURL, cfg.Host.Miniapp.Name)
		host.SignalReady(context.Background(), r, cfg.Host.ReadyTimeout, logger)
	}

	// Run the game; the player is closed on the way out
	if err := tui.Run(ctrl, player, tui.Options{
		TickInterval: cfg.Session.TickInterval(),
		Logger:       logger,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

func audioConfig(cfg config.Config) audio.Config {
	return audio.Config{
		MusicVolume:    cfg.Audio.MusicVolume,
		GameOverVolume: cfg.Audio.GameOverVolume,
		RetryDelay:     cfg.Audio.RetryDelay,
		MuteKey:        cfg.Storage.MuteKey,
	}
}

// openClips loads the music loop and game-over stinger. A missing device or
// asset degrades to a clip that never plays; the game runs regardless.
func openClips(cfg config.AudioConfig, logger *log.Logger) (music, stinger audio.Clip) {
	if !cfg.Enabled || flagMuteDevice {
		return audio.Silent{}, audio.Silent{}
	}

	if err := device.Init(cfg.SampleRate); err != nil {
		logger.Warn("sound device unavailable", "error", err)
		return audio.Unavailable{Err: err}, audio.Unavailable{Err: err}
	}

	music, err := device.Open(cfg.Music)
	if err != nil {
		logger.Warn("cannot load music", "path", cfg.Music, "error", err)
	}
	stinger, err = device.Open(cfg.GameOver)
	if err != nil {
		logger.Warn("cannot load game over sound", "path", cfg.GameOver, "error", err)
	}
	return music, stinger
}
