package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/base-tetris/internal/platform/tui"
	"github.com/vovakirdan/base-tetris/internal/registry"
	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/session"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

var (
	flagScoresTUI   bool
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [engine]",
	Short: "Show session history",
	Long: `Display the best finished sessions for an engine, with aggregate stats
and the best score on record. Without an engine the configured one is used.

Examples:
  basetetris scores
  basetetris scores replay --limit 20
  basetetris scores --tui`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse history interactively")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of sessions to show")
}

func runScores(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	engineID := cfg.Session.Engine
	if len(args) == 1 {
		engineID = args[0]
	}

	// Check if engine exists
	if !registry.Exists(engineID) {
		fmt.Fprintf(os.Stderr, "Error: unknown engine %q\n", engineID)
		fmt.Fprintln(os.Stderr, "Run 'basetetris engines' to see available engines.")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening preferences database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	info, _ := registry.Lookup(engineID)
	best := score.Open(store, cfg.Storage.BestKey, nil).Read()

	if flagScoresTUI {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunHistory(store, info, best, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sessions, err := store.TopSessions(engineID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	p := message.NewPrinter(language.English)
	fmt.Printf("History - %s\n", info.Title)
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
	} else {
		fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %s\n", "Rank", "Score", "Lines", "Level", "Date")
		fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %s\n", "----", "-----", "-----", "-----", "----")

		for i, e := range sessions {
			p.Printf("  %-4d  %-10d  %-5d  %-5d  %s\n",
				i+1, e.Score, e.Lines, session.Level(e.Lines), e.CreatedAt.Local().Format("2006-01-02 15:04"))
		}

		if st, err := store.Stats(engineID); err == nil && st.Sessions > 0 {
			fmt.Println()
			p.Printf("Sessions: %d  Average: %.0f  Lines: %d\n", st.Sessions, st.AvgScore, st.TotalLines)
		}
	}

	fmt.Println()
	p.Printf("Best: %d\n", best)
}
