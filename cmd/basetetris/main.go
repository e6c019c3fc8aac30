// basetetris is the terminal shell for Base Tetris: it mounts a block-stacking
// engine, drives its lifecycle, plays music and keeps the best score.
//
// Usage:
//
//	basetetris                  - Play (same as "basetetris play")
//	basetetris play             - Play in the terminal
//	basetetris replay [script]  - Run a replay script headless
//	basetetris serve            - Start SSH server for remote play
//	basetetris host             - Serve the miniapp manifest and webhook
//	basetetris engines          - List registered engines
//	basetetris scores [engine]  - Show session history
//	basetetris best [--reset]   - Show or clear the best score
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.basetetris, ./configs)
//	--db <path>         - Preferences database path
//	--fps <rate>        - Tick rate
//	--log-level <lvl>   - debug, info, warn, error
//	--log-file <path>   - Log file for the terminal UI
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/base-tetris/internal/config"
	"github.com/vovakirdan/base-tetris/internal/storage"

	// Import engines to register them
	_ "github.com/vovakirdan/base-tetris/internal/engine/replay"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagFPS      int
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "basetetris",
	Short: "Base Tetris - Stack, clear, win in your terminal",
	Long: `Base Tetris runs a block-stacking game in your terminal with music,
a persistent best score and an optional SSH server for remote play.

Available commands:
  play     - Play in the terminal (default)
  replay   - Run a replay script without a terminal UI
  serve    - Start SSH server for remote play
  host     - Serve the miniapp manifest and webhook endpoints
  engines  - Show registered engines
  scores   - View session history
  best     - Show or reset the best score

Examples:
  basetetris
  basetetris play --mute-device
  basetetris replay ./scripts/tetris.yaml
  basetetris serve --ssh :2222
  basetetris host --listen :8080`,
	Run: runPlay,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to preferences database (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate in frames per second (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file for the terminal UI (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(bestCmd)
}

// loadConfig loads the config file and applies global flag overrides.
// Exits on error.
func loadConfig() config.Config {
	cfg, _, err := config.LoadWithSource(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagFPS > 0 {
		cfg.Session.FPS = flagFPS
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds a logger at the configured level. When toFile is set the
// output goes to the configured log file instead of stderr, since the
// terminal UI owns the screen. The returned func releases the file.
func newLogger(cfg config.LogConfig, prefix string, toFile bool) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	release := func() {}

	if toFile {
		w = io.Discard
		if cfg.File != "" {
			if f, err := openLogFile(cfg.File); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
			} else {
				w = f
				release = func() { f.Close() }
			}
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger, release
}

func openLogFile(path string) (*os.File, error) {
	path, err := storage.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// prefStore is what every command needs from the preferences database.
type prefStore interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	PutMax(key string, v int) (int, error)
	Delete(key string) error
}

// openPrefs opens the sqlite store. When it is unavailable the returned
// prefs are an in-memory map and store is nil.
func openPrefs(cfg config.StorageConfig, logger *log.Logger) (prefStore, *storage.Store) {
	store, err := storage.Open(cfg.Path)
	if err != nil {
		logger.Warn("could not open preferences database, keeping records in memory", "path", cfg.Path, "error", err)
		return storage.NewMemory(), nil
	}
	return store, store
}
