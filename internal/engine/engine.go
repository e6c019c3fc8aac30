// Package engine defines the contract between the session shell and an
// externally supplied block-stacking engine.
//
// The shell never simulates the board itself. It drives an Engine through
// its control surface, advances it once per frame, and observes a Snapshot
// of its counters and lifecycle tag.
package engine

import "github.com/vovakirdan/base-tetris/internal/core"

// Lifecycle is the engine-reported session phase.
type Lifecycle int

const (
	// Idle is the engine's "not started" phase. The engine cannot tell a
	// fresh mount from an idle one; the session controller tracks that.
	Idle Lifecycle = iota
	Playing
	Paused
	Lost
)

// String returns the lowercase tag name used in scripts and logs.
func (l Lifecycle) String() string {
	switch l {
	case Idle:
		return "idle"
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

// ParseLifecycle maps a tag name back to a Lifecycle.
func ParseLifecycle(s string) (Lifecycle, bool) {
	switch s {
	case "idle", "not_started":
		return Idle, true
	case "playing":
		return Playing, true
	case "paused":
		return Paused, true
	case "lost":
		return Lost, true
	}
	return Idle, false
}

// Snapshot is one observation of the engine's counters.
type Snapshot struct {
	Tag   Lifecycle
	Score int
	Lines int
}

// Controls is the imperative control interface of an engine.
// All calls are synchronous and fire-and-forget; their legality is governed
// by the engine's own lifecycle tag.
type Controls interface {
	MoveLeft()
	MoveRight()
	MoveDown()
	FlipClockwise()
	FlipCounterclockwise()
	HardDrop()
	Hold()
	Pause()
	Resume()
	Restart()
}

// Engine is a mounted block-stacking engine.
// Implementations may also implement io.Closer; Close is called on unmount.
type Engine interface {
	Controls

	// Tick advances the engine by one frame.
	Tick()

	// Snapshot returns the current counters and lifecycle tag.
	Snapshot() Snapshot

	// RenderBoard draws the playfield into dst. dst is pre-cleared.
	RenderBoard(dst *core.Screen)

	// RenderQueue draws the upcoming-piece queue into dst. dst is pre-cleared.
	RenderQueue(dst *core.Screen)
}

// Factory creates a fresh engine instance. Called once per mount.
type Factory func() Engine

// Standard playfield dimensions in cells. Each cell is two columns wide on
// the board surface, which also carries a one-cell border.
const (
	BoardCols = 10
	BoardRows = 20
	QueueSize = 3
)

// NewBoardSurface allocates a surface sized for a standard playfield.
func NewBoardSurface() *core.Screen {
	return core.NewScreen(BoardCols*2+2, BoardRows+2)
}

// NewQueueSurface allocates a surface holding QueueSize upcoming pieces.
func NewQueueSurface() *core.Screen {
	return core.NewScreen(10, QueueSize*3)
}
