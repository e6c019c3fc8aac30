package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/base-tetris/internal/host"
)

var (
	flagListen        string
	flagPrintManifest bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Serve the miniapp manifest and webhook endpoints",
	Long: `Start the HTTP server the host platform talks to.

Endpoints:
  GET  /.well-known/farcaster.json  - Miniapp manifest
  POST /api/webhook                 - Host events
  GET  /api/webhook                 - Health check

Asset URLs in the manifest are derived from host.root_url in the config.

Examples:
  basetetris host
  basetetris host --listen :8080
  basetetris host --print-manifest`,
	Args: cobra.NoArgs,
	Run:  runHost,
}

func init() {
	hostCmd.Flags().StringVar(&flagListen, "listen", "", "HTTP listen address (overrides config)")
	hostCmd.Flags().BoolVar(&flagPrintManifest, "print-manifest", false, "Print the manifest JSON and exit")
}

func runHost(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagListen != "" {
		cfg.Host.Listen = flagListen
	}

	if flagPrintManifest {
		data, err := host.BuildManifest(cfg.Host).JSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	logger, release := newLogger(cfg.Log, "basetetris-host", false)
	defer release()

	server, err := host.NewServer(cfg.Host, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving manifest on %s%s\n", server.Addr(), host.ManifestPath)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
