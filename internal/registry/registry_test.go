package registry

import (
	"testing"

	"github.com/vovakirdan/stackfall/internal/core"
)

type stubGame struct{ id string }

func (g stubGame) ID() string { return g.id }
func (g stubGame) Title() string { return "Stub " + g.id }
func (g stubGame) Reset(core.RuntimeConfig) {}
func (g stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g stubGame) Render(*core.Screen) {}
func (g stubGame) State() core.GameState { return core.GameState{} }

type describedGame struct{ stubGame }

func (describedGame) Description() string { return "has a description" }

func TestRegisterCreateList(t *testing.T) {
	Register("zz-stub", func() Game { return stubGame{id: "zz-stub"} })
	Register("aa-stub", func() Game { return stubGame{id: "aa-stub"} })

	if !Exists("zz-stub") || Exists("missing") {
		t.Fatal("Exists() mismatch")
	}

	g, err := Create("aa-stub")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if g.ID() != "aa-stub" {
		t.Errorf("ID() = %q", g.ID())
	}
	if _, err := Create("missing"); err == nil {
		t.Error("expected error for unknown id")
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("List() not sorted: %v", list)
		}
	}
	var found bool
	for _, info := range list {
		if info.ID == "zz-stub" {
			found = info.Title == "Stub zz-stub" && info.Description == ""
		}
	}
	if !found {
		t.Errorf("zz-stub missing or untitled in %v", list)
	}
}

func TestRegisterDescription(t *testing.T) {
	Register("desc-stub", func() Game { return describedGame{stubGame{id: "desc-stub"}} })

	for _, info := range List() {
		if info.ID == "desc-stub" {
			if info.Description != "has a description" {
				t.Errorf("Description = %q", info.Description)
			}
			return
		}
	}
	t.Error("desc-stub not listed")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })
}
