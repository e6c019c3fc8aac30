package registry

import (
	"strings"
	"testing"

	"github.com/vovakirdan/base-tetris/internal/core"
	"github.com/vovakirdan/base-tetris/internal/engine"
)

type stubEngine struct{}

func (stubEngine) MoveLeft()                    {}
func (stubEngine) MoveRight()                   {}
func (stubEngine) MoveDown()                    {}
func (stubEngine) FlipClockwise()               {}
func (stubEngine) FlipCounterclockwise()        {}
func (stubEngine) HardDrop()                    {}
func (stubEngine) Hold()                        {}
func (stubEngine) Pause()                       {}
func (stubEngine) Resume()                      {}
func (stubEngine) Restart()                     {}
func (stubEngine) Tick()                        {}
func (stubEngine) Snapshot() engine.Snapshot    { return engine.Snapshot{Tag: engine.Playing} }
func (stubEngine) RenderBoard(dst *core.Screen) {}
func (stubEngine) RenderQueue(dst *core.Screen) {}

func TestRegisterAndCreate(t *testing.T) {
	Register("zz-stub", "Stub", func() engine.Engine { return stubEngine{} })
	t.Cleanup(func() { unregister("zz-stub") })

	if !Exists("zz-stub") {
		t.Fatal("Exists() = false after Register")
	}

	e, err := Create("zz-stub")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if e.Snapshot().Tag != engine.Playing {
		t.Errorf("Created engine reports %v", e.Snapshot().Tag)
	}

	found := false
	for _, info := range List() {
		if info.ID == "zz-stub" {
			found = true
			if info.Title != "Stub" {
				t.Errorf("Title = %q, expected %q", info.Title, "Stub")
			}
		}
	}
	if !found {
		t.Error("List() does not include registered engine")
	}
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("does-not-exist")
	if err == nil {
		t.Fatal("Create() should fail for unknown engine")
	}
	if !strings.Contains(err.Error(), "does-not-exist") {
		t.Errorf("error %q should name the engine", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz-dup", "Dup", func() engine.Engine { return stubEngine{} })
	t.Cleanup(func() { unregister("zz-dup") })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("zz-dup", "Dup", func() engine.Engine { return stubEngine{} })
}

func TestListSorted(t *testing.T) {
	Register("zz-b", "B", func() engine.Engine { return stubEngine{} })
	Register("zz-a", "A", func() engine.Engine { return stubEngine{} })
	t.Cleanup(func() {
		unregister("zz-a")
		unregister("zz-b")
	})

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Errorf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}

func TestLookup(t *testing.T) {
	Register("zz-look", "Look", func() engine.Engine { return stubEngine{} })
	t.Cleanup(func() { unregister("zz-look") })

	info, ok := Lookup("zz-look")
	if !ok || info.Title != "Look" {
		t.Errorf("Lookup() = %+v, %v, expected Look, true", info, ok)
	}
	if _, ok := Lookup("does-not-exist"); ok {
		t.Error("Lookup() should miss unknown engine")
	}
}
