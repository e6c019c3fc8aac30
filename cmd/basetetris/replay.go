package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/base-tetris/internal/audio"
	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/engine/replay"
	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/session"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

var (
	flagTicks     int
	flagDropEvery int
	flagPersist   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Run a replay script without a terminal UI",
	Long: `Drive the session controller against a replay script and print every
lifecycle transition. Without a script the embedded demo is used.

By default the best score is kept in memory so runs do not touch your
record. Use --persist to commit it to the preferences database.

Examples:
  basetetris replay
  basetetris replay ./scripts/tetris.yaml --ticks 600
  basetetris replay --drop-every 10`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().IntVar(&flagTicks, "ticks", 10000, "Maximum number of ticks to run")
	replayCmd.Flags().IntVar(&flagDropEvery, "drop-every", 0, "Hard drop every N ticks (0 = never)")
	replayCmd.Flags().BoolVar(&flagPersist, "persist", false, "Commit the best score to the preferences database")
}

func runReplay(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	logger, release := newLogger(cfg.Log, "basetetris-replay", false)
	defer release()

	script, err := loadScript(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var prefs score.Backend = storage.NewMemory()
	if flagPersist {
		persisted, store := openPrefs(cfg.Storage, logger)
		if store != nil {
			defer store.Close()
		}
		prefs = persisted
	}

	p := message.NewPrinter(language.English)
	player := audio.New(audio.Silent{}, audio.Silent{}, nil, audioConfig(cfg), logger)
	defer player.Close()
	best := score.Open(prefs, cfg.Storage.BestKey, logger)

	mount := func() (engine.Engine, error) {
		e, err := replay.New(script)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	ctrl := session.New(mount, player, best,
		session.WithLogger(logger),
		session.WithGameOverHook(func(r session.Result) {
			p.Printf("game over: score %d, lines %d, level %d, new best %t\n", r.Score, r.Lines, r.Level, r.NewBest)
		}),
	)

	if err := ctrl.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.GoHome()

	last := ctrl.State()
	p.Printf("tick %6d  %-11s score %d\n", 0, last, ctrl.Observed().Score)

	for tick := 1; tick <= flagTicks; tick++ {
		if flagDropEvery > 0 && tick%flagDropEvery == 0 {
			ctrl.Control(engine.ActionHardDrop)
		}
		ctrl.Tick()

		if st := ctrl.State(); st != last {
			obs := ctrl.Observed()
			p.Printf("tick %6d  %-11s score %d, lines %d\n", tick, st, obs.Score, obs.Lines)
			last = st
		}
		if last == session.Lost {
			break
		}
	}

	fmt.Println()
	p.Printf("Best: %d\n", ctrl.Best())
}

func loadScript(args []string) (*replay.Script, error) {
	if len(args) == 0 {
		return replay.Demo()
	}
	return replay.Load(args[0])
}
