// Package session wraps a mounted engine in the outer game lifecycle.
//
// The engine reports its lifecycle tag on every frame. The controller keeps
// the previously observed tag and turns level changes into one-shot side
// effects: music start and stop, the game-over stinger and the best-score
// commit.
package session

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/registry"
)

// State is the outer lifecycle as seen by the shell.
type State int

const (
	NotStarted State = iota
	Playing
	Paused
	Lost
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

var (
	// ErrNotMounted is returned by engine controls issued before Start.
	ErrNotMounted = errors.New("session: no engine mounted")
	// ErrPaused is returned by Restart while the session is paused.
	ErrPaused = errors.New("session: cannot restart while paused")
)

// Audio is the part of the audio subsystem the controller drives.
type Audio interface {
	PlayMusic()
	StopMusic()
	PlayGameOver()
}

// Scores is the best-score record.
type Scores interface {
	Best() int
	Commit(candidate int) bool
	IsNewBest(points int) bool
}

// Mount creates the engine for a new session.
type Mount func() (engine.Engine, error)

// FromRegistry mounts the engine registered under id.
func FromRegistry(id string) Mount {
	return func() (engine.Engine, error) {
		return registry.Create(id)
	}
}

// Result describes a finished session.
type Result struct {
	Score   int
	Lines   int
	Level   int
	NewBest bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithGameOverHook registers fn to run once per Lost edge, after the score
// has been committed.
func WithGameOverHook(fn func(Result)) Option {
	return func(c *Controller) { c.onGameOver = fn }
}

// Controller is the session lifecycle state machine. It is owned by a single
// goroutine, normally the UI loop, and is not safe for concurrent use.
type Controller struct {
	mount  Mount
	audio  Audio
	scores Scores
	logger *log.Logger

	onGameOver func(Result)

	eng      engine.Engine
	state    State
	observed engine.Snapshot
	latched  bool
	newBest  bool
}

// New creates a controller in NotStarted.
func New(mount Mount, audio Audio, scores Scores, opts ...Option) *Controller {
	c := &Controller{
		mount:  mount,
		audio:  audio,
		scores: scores,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current outer state.
func (c *Controller) State() State { return c.state }

// Mounted reports whether an engine is mounted.
func (c *Controller) Mounted() bool { return c.eng != nil }

// Engine returns the mounted engine, or nil.
func (c *Controller) Engine() engine.Engine { return c.eng }

// Observed returns the most recent engine observation.
func (c *Controller) Observed() engine.Snapshot { return c.observed }

// Best returns the best score on record.
func (c *Controller) Best() int { return c.scores.Best() }

// NewBest reports whether the finished session earned the high-score banner.
// Only meaningful while Lost.
func (c *Controller) NewBest() bool { return c.newBest }

// Level returns the level derived from the observed line count.
func (c *Controller) Level() int { return Level(c.observed.Lines) }

// Level derives the level from a lines-cleared count.
func Level(lines int) int {
	if lines < 0 {
		lines = 0
	}
	return lines/10 + 1
}

// Start mounts a fresh engine and begins music. It is a no-op while an
// engine is already mounted. A mount failure leaves the controller in
// NotStarted.
func (c *Controller) Start() error {
	if c.eng != nil {
		return nil
	}
	eng, err := c.mount()
	if err != nil {
		return err
	}

	c.eng = eng
	c.state = Playing
	c.latched = false
	c.newBest = false
	c.observed = eng.Snapshot()
	c.observed.Tag = engine.Playing

	c.logger.Info("session started")
	c.audio.PlayMusic()
	return nil
}

// GoHome stops the music, unmounts the engine and returns to NotStarted.
// Idempotent.
func (c *Controller) GoHome() {
	if c.eng == nil {
		return
	}
	c.audio.StopMusic()

	if closer, ok := c.eng.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warn("engine close failed", "error", err)
		}
	}

	c.eng = nil
	c.state = NotStarted
	c.latched = false
	c.newBest = false
	c.observed = engine.Snapshot{}
	c.logger.Info("session ended")
}

// Restart asks the engine to begin a new game. Music and the game-over latch
// follow once the engine reports Playing.
func (c *Controller) Restart() error {
	if c.eng == nil {
		return ErrNotMounted
	}
	if c.state == Paused {
		return ErrPaused
	}
	c.logger.Debug("restart requested", "state", c.state)
	c.eng.Restart()
	return nil
}

// TogglePause pauses or resumes the engine based on the last observed tag.
// It never touches audio and does nothing once the game is lost.
func (c *Controller) TogglePause() error {
	if c.eng == nil {
		return ErrNotMounted
	}
	switch c.observed.Tag {
	case engine.Playing:
		c.eng.Pause()
		c.observed.Tag = engine.Paused
		c.state = Paused
	case engine.Paused:
		c.eng.Resume()
		c.observed.Tag = engine.Playing
		c.state = Playing
	}
	return nil
}

// Control forwards a movement intent to the engine while playing.
// Returns whether it was forwarded.
func (c *Controller) Control(a engine.Action) bool {
	if c.eng == nil || c.state != Playing {
		return false
	}
	return engine.Apply(c.eng, a)
}

// Tick advances the mounted engine by one frame and observes it.
func (c *Controller) Tick() {
	if c.eng == nil {
		return
	}
	c.eng.Tick()
	c.OnTick(c.eng.Snapshot())
}

// OnTick records an engine observation and fires edge-triggered effects.
// Calling it repeatedly with an unchanged tag has no further effect.
func (c *Controller) OnTick(s engine.Snapshot) {
	if c.eng == nil {
		return
	}
	c.observed = s

	switch s.Tag {
	case engine.Lost:
		c.state = Lost
		if c.latched {
			return
		}
		c.latched = true
		c.gameOver(s)

	case engine.Playing:
		c.state = Playing
		if !c.latched {
			return
		}
		c.latched = false
		c.newBest = false
		c.logger.Info("session restarted")
		c.audio.PlayMusic()

	case engine.Paused:
		c.state = Paused
	}
}

func (c *Controller) gameOver(s engine.Snapshot) {
	c.audio.StopMusic()
	c.audio.PlayGameOver()

	c.scores.Commit(s.Score)
	c.newBest = c.scores.IsNewBest(s.Score)

	res := Result{
		Score:   s.Score,
		Lines:   s.Lines,
		Level:   Level(s.Lines),
		NewBest: c.newBest,
	}
	c.logger.Info("game over", "score", res.Score, "lines", res.Lines, "level", res.Level, "new_best", res.NewBest)

	if c.onGameOver != nil {
		c.onGameOver(res)
	}
}
