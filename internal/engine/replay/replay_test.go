package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/registry"
)

const shortScript = `
title: short
frames_per_step: 2
steps:
  - {tag: playing, score: 0, lines: 0, queue: [t, I]}
  - {tag: playing, score: 100, lines: 1}
  - {tag: lost, score: 100, lines: 1}
`

func newShort(t *testing.T) *Engine {
	t.Helper()
	s, err := Parse([]byte(shortScript))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

func tickN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func TestTickAdvancesSteps(t *testing.T) {
	e := newShort(t)

	if got := e.Snapshot(); got.Tag != engine.Playing || got.Score != 0 {
		t.Fatalf("initial Snapshot() = %+v", got)
	}

	e.Tick()
	if e.Step() != 0 {
		t.Errorf("Step() = %d after one tick, expected 0", e.Step())
	}
	e.Tick()
	if e.Step() != 1 {
		t.Errorf("Step() = %d after two ticks, expected 1", e.Step())
	}
	if got := e.Snapshot(); got.Score != 100 || got.Lines != 1 {
		t.Errorf("Snapshot() = %+v, expected score 100 lines 1", got)
	}

	tickN(e, 2)
	if got := e.Snapshot(); got.Tag != engine.Lost {
		t.Errorf("Snapshot().Tag = %v, expected Lost", got.Tag)
	}
}

func TestLostIsTerminal(t *testing.T) {
	e := newShort(t)
	tickN(e, 4)

	tickN(e, 50)
	e.HardDrop()
	e.Pause()
	if got := e.Snapshot(); got.Tag != engine.Lost {
		t.Errorf("Lost should be terminal, got %v", got.Tag)
	}
	if e.Step() != 2 {
		t.Errorf("Step() = %d, expected to stay on 2", e.Step())
	}
}

func TestPauseFreezes(t *testing.T) {
	e := newShort(t)
	e.Pause()

	if got := e.Snapshot().Tag; got != engine.Paused {
		t.Fatalf("Snapshot().Tag = %v after Pause, expected Paused", got)
	}
	tickN(e, 10)
	e.HardDrop()
	if e.Step() != 0 {
		t.Errorf("Paused engine advanced to step %d", e.Step())
	}

	e.Resume()
	if got := e.Snapshot().Tag; got != engine.Playing {
		t.Errorf("Snapshot().Tag = %v after Resume, expected Playing", got)
	}
}

func TestRestartRewinds(t *testing.T) {
	e := newShort(t)
	tickN(e, 4)

	e.Restart()
	got := e.Snapshot()
	if got.Tag != engine.Playing || got.Score != 0 || e.Step() != 0 {
		t.Errorf("after Restart Snapshot() = %+v step %d", got, e.Step())
	}
}

func TestHardDropSkipsAndRecords(t *testing.T) {
	e := newShort(t)
	e.HardDrop()
	e.MoveLeft()
	e.MoveLeft()
	e.Hold()

	if e.Step() != 1 {
		t.Errorf("HardDrop should advance, Step() = %d", e.Step())
	}
	if e.Inputs(engine.ActionHardDrop) != 1 {
		t.Errorf("Inputs(HardDrop) = %d, expected 1", e.Inputs(engine.ActionHardDrop))
	}
	if e.Inputs(engine.ActionMoveLeft) != 2 {
		t.Errorf("Inputs(MoveLeft) = %d, expected 2", e.Inputs(engine.ActionMoveLeft))
	}
	if e.Inputs(engine.ActionHold) != 1 {
		t.Errorf("Inputs(Hold) = %d, expected 1", e.Inputs(engine.ActionHold))
	}
}

func TestFinalStepHeld(t *testing.T) {
	s, err := Parse([]byte(`
frames_per_step: 1
steps:
  - {tag: playing, score: 0}
  - {tag: playing, score: 10}
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	e, _ := New(s)
	tickN(e, 20)
	if e.Step() != 1 || e.Snapshot().Score != 10 {
		t.Errorf("final step should be held, got step %d score %d", e.Step(), e.Snapshot().Score)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no steps", "title: x\n", "no steps"},
		{"unknown tag", "steps:\n  - {tag: exploded}\n", "unknown tag"},
		{"first not playing", "steps:\n  - {tag: lost}\n", "step 0 must be playing"},
		{"idle step", "steps:\n  - {tag: playing}\n  - {tag: idle}\n", "idle steps"},
		{"negative score", "steps:\n  - {tag: playing, score: -1}\n", "must not be negative"},
		{"negative fps", "frames_per_step: -2\nsteps:\n  - {tag: playing}\n", "frames_per_step"},
		{"bad yaml", "steps: [", "failed to parse"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(shortScript), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if s.Title != "short" || len(s.Steps) != 3 {
		t.Errorf("Load() = %+v", s)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestDemoScript(t *testing.T) {
	e, err := NewDemo()
	if err != nil {
		t.Fatalf("NewDemo() failed: %v", err)
	}
	if e.Title() == "" {
		t.Error("demo script should have a title")
	}

	// Drive the demo to the end; it must finish lost with a positive score.
	for i := 0; i < 10000 && e.Snapshot().Tag != engine.Lost; i++ {
		e.Tick()
	}
	got := e.Snapshot()
	if got.Tag != engine.Lost || got.Score <= 0 {
		t.Errorf("demo should end lost with a score, got %+v", got)
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(ID) {
		t.Fatal("replay engine should be registered")
	}
	e, err := registry.Create(ID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if e.Snapshot().Tag != engine.Playing {
		t.Errorf("fresh engine should be playing, got %v", e.Snapshot().Tag)
	}
}

func TestRender(t *testing.T) {
	e := newShort(t)
	board := engine.NewBoardSurface()
	e.RenderBoard(board)

	if board.Get(0, 0) != '┌' {
		t.Errorf("board should have a border, got %q", board.Get(0, 0))
	}

	queue := engine.NewQueueSurface()
	e.RenderQueue(queue)
	// First piece is a T: its top row has a single block in column 1.
	if queue.Get(3, 0) != '█' {
		t.Errorf("queue should draw the T piece, row 0 = %q", queue.Row(0))
	}
	// Second piece is an I on row 3.
	if queue.Row(3) != " ████████ " {
		t.Errorf("queue row 3 = %q, expected an I piece", queue.Row(3))
	}
}
