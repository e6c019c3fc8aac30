package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

var flagReset bool

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Show or reset the best score",
	Long: `Print the best score on record. The record only ever grows during play;
--reset is the one way to clear it.

Examples:
  basetetris best
  basetetris best --reset`,
	Args: cobra.NoArgs,
	Run:  runBest,
}

func init() {
	bestCmd.Flags().BoolVar(&flagReset, "reset", false, "Clear the best score")
}

func runBest(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening preferences database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagReset {
		if err := store.Delete(cfg.Storage.BestKey); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Best score cleared.")
		return
	}

	p := message.NewPrinter(language.English)
	p.Printf("Best: %d\n", score.Open(store, cfg.Storage.BestKey, nil).Read())
}
