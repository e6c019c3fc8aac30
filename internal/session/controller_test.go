package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/base-tetris/internal/core"
	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

const bestKey = "base-tetris-high-score"

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) MoveLeft()                 { m.Called() }
func (m *mockEngine) MoveRight()                { m.Called() }
func (m *mockEngine) MoveDown()                 { m.Called() }
func (m *mockEngine) FlipClockwise()            { m.Called() }
func (m *mockEngine) FlipCounterclockwise()     { m.Called() }
func (m *mockEngine) HardDrop()                 { m.Called() }
func (m *mockEngine) Hold()                     { m.Called() }
func (m *mockEngine) Pause()                    { m.Called() }
func (m *mockEngine) Resume()                   { m.Called() }
func (m *mockEngine) Restart()                  { m.Called() }
func (m *mockEngine) Tick()                     { m.Called() }
func (m *mockEngine) RenderBoard(*core.Screen)  {}
func (m *mockEngine) RenderQueue(*core.Screen)  {}
func (m *mockEngine) Snapshot() engine.Snapshot { return m.Called().Get(0).(engine.Snapshot) }

type closingEngine struct {
	mockEngine
	closed int
}

func (c *closingEngine) Close() error {
	c.closed++
	return nil
}

type mockAudio struct {
	mock.Mock
}

func (m *mockAudio) PlayMusic()    { m.Called() }
func (m *mockAudio) StopMusic()    { m.Called() }
func (m *mockAudio) PlayGameOver() { m.Called() }

func newMockAudio() *mockAudio {
	a := &mockAudio{}
	a.On("PlayMusic").Return()
	a.On("StopMusic").Return()
	a.On("PlayGameOver").Return()
	return a
}

func newMockEngine() *mockEngine {
	e := &mockEngine{}
	e.On("Snapshot").Return(engine.Snapshot{Tag: engine.Playing})
	return e
}

type fixture struct {
	ctrl   *Controller
	eng    *mockEngine
	audio  *mockAudio
	scores *score.Store
	prefs  *storage.Memory
	games  []Result
}

func newFixture(t *testing.T, previousBest string) *fixture {
	t.Helper()
	f := &fixture{
		eng:   newMockEngine(),
		audio: newMockAudio(),
		prefs: storage.NewMemory(),
	}
	if previousBest != "" {
		f.prefs.Put(bestKey, previousBest)
	}
	f.scores = score.Open(f.prefs, bestKey, nil)
	f.ctrl = New(
		func() (engine.Engine, error) { return f.eng, nil },
		f.audio,
		f.scores,
		WithGameOverHook(func(r Result) { f.games = append(f.games, r) }),
	)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctrl.Start())
}

func TestStartMountsAndPlaysMusic(t *testing.T) {
	f := newFixture(t, "")

	assert.Equal(t, NotStarted, f.ctrl.State())
	assert.False(t, f.ctrl.Mounted())

	f.start(t)

	assert.Equal(t, Playing, f.ctrl.State())
	assert.True(t, f.ctrl.Mounted())
	f.audio.AssertNumberOfCalls(t, "PlayMusic", 1)
}

func TestStartWhileMountedIsNoop(t *testing.T) {
	mounts := 0
	audio := newMockAudio()
	ctrl := New(func() (engine.Engine, error) {
		mounts++
		return newMockEngine(), nil
	}, audio, score.Open(storage.NewMemory(), bestKey, nil))

	require.NoError(t, ctrl.Start())
	require.NoError(t, ctrl.Start())

	assert.Equal(t, 1, mounts)
	audio.AssertNumberOfCalls(t, "PlayMusic", 1)
}

func TestStartMountFailure(t *testing.T) {
	audio := newMockAudio()
	ctrl := New(func() (engine.Engine, error) {
		return nil, errors.New("no such engine")
	}, audio, score.Open(storage.NewMemory(), bestKey, nil))

	assert.Error(t, ctrl.Start())
	assert.Equal(t, NotStarted, ctrl.State())
	audio.AssertNotCalled(t, "PlayMusic")
}

func TestGameOverScenario(t *testing.T) {
	f := newFixture(t, "300")
	f.start(t)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing, Score: 500, Lines: 4})
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 500, Lines: 4})

	assert.Equal(t, Lost, f.ctrl.State())
	f.audio.AssertNumberOfCalls(t, "StopMusic", 1)
	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 1)
	assert.Equal(t, 500, f.scores.Best())
	assert.True(t, f.ctrl.NewBest())

	stored, _, _ := f.prefs.Get(bestKey)
	assert.Equal(t, "500", stored)

	require.Len(t, f.games, 1)
	assert.Equal(t, Result{Score: 500, Lines: 4, Level: 1, NewBest: true}, f.games[0])
}

func TestGameOverKeepsHigherBest(t *testing.T) {
	f := newFixture(t, "900")
	f.start(t)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 500})

	assert.Equal(t, 900, f.scores.Best())
	assert.False(t, f.ctrl.NewBest())
}

func TestRepeatedLostTicksFireOnce(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)

	for i := 0; i < 50; i++ {
		f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 500})
	}

	f.audio.AssertNumberOfCalls(t, "StopMusic", 1)
	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 1)
	assert.Len(t, f.games, 1)
}

func TestRepeatedPlayingTicksHaveNoEffects(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)

	for i := 0; i < 50; i++ {
		f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing, Score: i})
	}

	f.audio.AssertNumberOfCalls(t, "PlayMusic", 1)
	f.audio.AssertNotCalled(t, "StopMusic")
	f.audio.AssertNotCalled(t, "PlayGameOver")
}

func TestRestartAfterLost(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.eng.On("Restart").Return()

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 500})
	require.NoError(t, f.ctrl.Restart())
	f.eng.AssertCalled(t, "Restart")

	for i := 0; i < 3; i++ {
		f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing})
	}

	assert.Equal(t, Playing, f.ctrl.State())
	assert.False(t, f.ctrl.NewBest())
	f.audio.AssertNumberOfCalls(t, "PlayMusic", 2)

	// The latch was cleared, so the next loss fires again.
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 100})
	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 2)
	assert.Len(t, f.games, 2)
	assert.Equal(t, 500, f.scores.Best())
}

func TestRestartWhilePlaying(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.eng.On("Restart").Return()

	require.NoError(t, f.ctrl.Restart())
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing})

	f.audio.AssertNumberOfCalls(t, "PlayMusic", 1)
}

func TestRestartPreconditions(t *testing.T) {
	f := newFixture(t, "")

	assert.ErrorIs(t, f.ctrl.Restart(), ErrNotMounted)
	assert.ErrorIs(t, f.ctrl.TogglePause(), ErrNotMounted)

	f.start(t)
	f.eng.On("Pause").Return()
	require.NoError(t, f.ctrl.TogglePause())
	assert.ErrorIs(t, f.ctrl.Restart(), ErrPaused)
	f.eng.AssertNotCalled(t, "Restart")
}

func TestTogglePause(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.eng.On("Pause").Return()
	f.eng.On("Resume").Return()

	require.NoError(t, f.ctrl.TogglePause())
	assert.Equal(t, Paused, f.ctrl.State())
	f.eng.AssertNumberOfCalls(t, "Pause", 1)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Paused})
	require.NoError(t, f.ctrl.TogglePause())
	assert.Equal(t, Playing, f.ctrl.State())
	f.eng.AssertNumberOfCalls(t, "Resume", 1)

	f.audio.AssertNumberOfCalls(t, "PlayMusic", 1)
	f.audio.AssertNotCalled(t, "StopMusic")
}

func TestTogglePauseIgnoredWhenLost(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost})

	require.NoError(t, f.ctrl.TogglePause())

	assert.Equal(t, Lost, f.ctrl.State())
	f.eng.AssertNotCalled(t, "Pause")
	f.eng.AssertNotCalled(t, "Resume")
}

func TestEnginePauseObserved(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Paused})
	assert.Equal(t, Paused, f.ctrl.State())

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing})
	assert.Equal(t, Playing, f.ctrl.State())
	f.audio.AssertNumberOfCalls(t, "PlayMusic", 1)
}

func TestPausedToLostFires(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Paused})
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 10})

	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 1)
}

func TestGoHome(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 40})

	f.ctrl.GoHome()
	f.ctrl.GoHome()

	assert.Equal(t, NotStarted, f.ctrl.State())
	assert.False(t, f.ctrl.Mounted())
	assert.Equal(t, engine.Snapshot{}, f.ctrl.Observed())
	// One stop for the game over, one for going home.
	f.audio.AssertNumberOfCalls(t, "StopMusic", 2)

	// Ticks after unmount are ignored.
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 40})
	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 1)
}

func TestGoHomeThenStartResetsLatch(t *testing.T) {
	f := newFixture(t, "")
	f.start(t)
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 40})
	f.ctrl.GoHome()

	f.start(t)
	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Playing})
	f.audio.AssertNumberOfCalls(t, "PlayMusic", 2)

	f.ctrl.OnTick(engine.Snapshot{Tag: engine.Lost, Score: 60})
	f.audio.AssertNumberOfCalls(t, "PlayGameOver", 2)
}

func TestGoHomeClosesEngine(t *testing.T) {
	eng := &closingEngine{}
	eng.On("Snapshot").Return(engine.Snapshot{Tag: engine.Playing})
	ctrl := New(func() (engine.Engine, error) { return eng, nil },
		newMockAudio(), score.Open(storage.NewMemory(), bestKey, nil))

	require.NoError(t, ctrl.Start())
	ctrl.GoHome()

	assert.Equal(t, 1, eng.closed)
}

func TestControlGating(t *testing.T) {
	f := newFixture(t, "")
	f.eng.On("MoveLeft").Return()
	f.eng.On("HardDrop").Return()
	f.eng.On("Pause").Return()

	assert.False(t, f.ctrl.Control(engine.ActionMoveLeft), "not mounted")

	f.start(t)
	assert.True(t, f.ctrl.Control(engine.ActionMoveLeft))
	assert.True(t, f.ctrl.Control(engine.ActionHardDrop))
	assert.False(t, f.ctrl.Control(engine.ActionNone))

	require.NoError(t, f.ctrl.TogglePause())
	assert.False(t, f.ctrl.Control(engine.ActionMoveLeft), "paused")

	f.eng.AssertNumberOfCalls(t, "MoveLeft", 1)
	f.eng.AssertNumberOfCalls(t, "HardDrop", 1)
}

func TestTickAdvancesAndObserves(t *testing.T) {
	eng := &mockEngine{}
	eng.On("Tick").Return()
	eng.On("Snapshot").Return(engine.Snapshot{Tag: engine.Playing, Score: 70, Lines: 23}).Once()
	eng.On("Snapshot").Return(engine.Snapshot{Tag: engine.Playing, Score: 70, Lines: 23})
	ctrl := New(func() (engine.Engine, error) { return eng, nil },
		newMockAudio(), score.Open(storage.NewMemory(), bestKey, nil))

	ctrl.Tick()
	eng.AssertNotCalled(t, "Tick")

	require.NoError(t, ctrl.Start())
	ctrl.Tick()

	eng.AssertNumberOfCalls(t, "Tick", 1)
	assert.Equal(t, 70, ctrl.Observed().Score)
	assert.Equal(t, 3, ctrl.Level())
}

func TestLevel(t *testing.T) {
	tests := []struct {
		lines    int
		expected int
	}{
		{0, 1},
		{9, 1},
		{10, 2},
		{19, 2},
		{20, 3},
		{105, 11},
		{-4, 1},
	}

	for _, tc := range tests {
		if got := Level(tc.lines); got != tc.expected {
			t.Errorf("Level(%d) = %d, expected %d", tc.lines, got, tc.expected)
		}
	}
}
