// Package replay provides a scripted engine that plays back recorded
// observations instead of simulating a board. It lets the shell run
// end-to-end without a real block-stacking engine and gives tests a
// deterministic engine to drive.
package replay

import (
	"github.com/vovakirdan/base-tetris/internal/core"
	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/registry"
)

// ID is the registry id of the replay engine.
const ID = "replay"

func init() {
	registry.Register(ID, "Replay (scripted demo)", func() engine.Engine {
		e, err := NewDemo()
		if err != nil {
			// The demo script is embedded; failing here is a build defect.
			panic(err)
		}
		return e
	})
}

// Engine replays a Script. It advances one step every FramesPerStep ticks,
// holds on the final step and treats a lost step as terminal until Restart.
type Engine struct {
	title  string
	fps    int
	steps  []step
	cursor int
	frame  int
	paused bool
	inputs map[engine.Action]int
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine for the given script.
func New(s *Script) (*Engine, error) {
	steps, err := s.compile()
	if err != nil {
		return nil, err
	}
	return &Engine{
		title:  s.Title,
		fps:    s.framesPerStep(),
		steps:  steps,
		inputs: make(map[engine.Action]int),
	}, nil
}

// NewDemo creates an engine for the embedded demo script.
func NewDemo() (*Engine, error) {
	s, err := Demo()
	if err != nil {
		return nil, err
	}
	return New(s)
}

// Title returns the script title.
func (e *Engine) Title() string {
	return e.title
}

// Step returns the index of the current script step.
func (e *Engine) Step() int {
	return e.cursor
}

// Inputs returns how many times a movement control was received.
func (e *Engine) Inputs(a engine.Action) int {
	return e.inputs[a]
}

func (e *Engine) current() step {
	return e.steps[e.cursor]
}

// live reports whether the script is running (not paused, not lost).
func (e *Engine) live() bool {
	return !e.paused && e.current().snap.Tag == engine.Playing
}

func (e *Engine) advance() {
	e.frame = 0
	if e.cursor < len(e.steps)-1 {
		e.cursor++
	}
}

// Tick advances the frame counter and moves to the next step when due.
func (e *Engine) Tick() {
	if e.paused || e.current().snap.Tag == engine.Lost {
		return
	}
	e.frame++
	if e.frame >= e.fps {
		e.advance()
	}
}

// Snapshot reports the current step, overridden to Paused while paused.
func (e *Engine) Snapshot() engine.Snapshot {
	snap := e.current().snap
	if e.paused && snap.Tag == engine.Playing {
		snap.Tag = engine.Paused
	}
	return snap
}

func (e *Engine) record(a engine.Action) {
	e.inputs[a]++
}

func (e *Engine) MoveLeft()             { e.record(engine.ActionMoveLeft) }
func (e *Engine) MoveRight()            { e.record(engine.ActionMoveRight) }
func (e *Engine) FlipClockwise()        { e.record(engine.ActionFlipClockwise) }
func (e *Engine) FlipCounterclockwise() { e.record(engine.ActionFlipCounterclockwise) }
func (e *Engine) Hold()                 { e.record(engine.ActionHold) }

// MoveDown skips ahead to the next step.
func (e *Engine) MoveDown() {
	e.record(engine.ActionMoveDown)
	if e.live() {
		e.advance()
	}
}

// HardDrop skips ahead to the next step.
func (e *Engine) HardDrop() {
	e.record(engine.ActionHardDrop)
	if e.live() {
		e.advance()
	}
}

// Pause freezes playback. Ignored unless the current step is playing.
func (e *Engine) Pause() {
	if e.current().snap.Tag == engine.Playing {
		e.paused = true
	}
}

// Resume unfreezes playback.
func (e *Engine) Resume() {
	e.paused = false
}

// Restart rewinds to the first step.
func (e *Engine) Restart() {
	e.cursor = 0
	e.frame = 0
	e.paused = false
}

// RenderBoard draws the current step's board inside a border.
func (e *Engine) RenderBoard(dst *core.Screen) {
	dst.DrawBox(0, 0, engine.BoardCols*2+2, engine.BoardRows+2, core.ColorGray)

	board := e.current().board
	for y := 0; y < engine.BoardRows; y++ {
		var row []rune
		if y < len(board) {
			row = []rune(board[y])
		}
		for x := 0; x < engine.BoardCols; x++ {
			px := 1 + x*2
			if x < len(row) && isPiece(row[x]) {
				c := core.PieceColor(row[x])
				dst.Set(px, y+1, '█', c)
				dst.Set(px+1, y+1, '█', c)
				continue
			}
			dst.Set(px, y+1, ' ', core.ColorDefault)
			dst.Set(px+1, y+1, '·', core.ColorGray)
		}
	}
}

// RenderQueue draws up to engine.QueueSize upcoming pieces, three rows each.
func (e *Engine) RenderQueue(dst *core.Screen) {
	queue := e.current().queue
	for i, p := range queue {
		if i >= engine.QueueSize {
			break
		}
		shape, ok := shapes[p]
		if !ok {
			continue
		}
		c := core.PieceColor(p)
		for dy, line := range shape {
			for dx, r := range line {
				if r == '#' {
					dst.Set(1+dx*2, i*3+dy, '█', c)
					dst.Set(2+dx*2, i*3+dy, '█', c)
				}
			}
		}
	}
}

func isPiece(r rune) bool {
	_, ok := shapes[toUpper(r)]
	return ok
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// shapes holds the spawn orientation of each tetromino.
var shapes = map[rune][2]string{
	'I': {"####", "    "},
	'O': {" ## ", " ## "},
	'T': {" #  ", "### "},
	'S': {" ## ", "##  "},
	'Z': {"##  ", " ## "},
	'J': {"#   ", "### "},
	'L': {"  # ", "### "},
}
