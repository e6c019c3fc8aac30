package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/base-tetris/internal/platform/tui"
)

var (
	flagSSHAddr string
	flagHostKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session. Best scores and the mute flag are
kept per SSH user; remote sessions have no sound.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.basetetris/host_key

Examples:
  basetetris serve                           # Listen on :23234 with auto-generated key
  basetetris serve --ssh :2222               # Listen on port 2222
  basetetris serve --host-key ./my_host_key  # Use specific host key
  basetetris serve --db ./prefs.db           # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	sshCfg := tui.SSHServerConfig{
		Address:      cfg.SSH.Address,
		HostKeyPath:  cfg.SSH.HostKey,
		DBPath:       cfg.Storage.Path,
		IdleTimeout:  cfg.SSH.IdleTimeout,
		EngineID:     cfg.Session.Engine,
		TickInterval: cfg.Session.TickInterval(),
		BestKey:      cfg.Storage.BestKey,
		MuteKey:      cfg.Storage.MuteKey,
	}
	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}

	server, err := tui.NewSSHServer(sshCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting Base Tetris SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
