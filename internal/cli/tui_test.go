package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/floorplace/floorplace/pkg/search"
)

func TestWatchModelTracksIterations(t *testing.T) {
	m := NewWatchModel()

	var model tea.Model = m
	for i := 0; i < 3; i++ {
		model, _ = model.Update(iterMsg(search.Iteration{
			Index: i, Objective: 20 - i, Best: 20 - i, Feasible: i == 2,
		}))
	}

	got := model.(WatchModel)
	if len(got.Iterations) != 3 {
		t.Fatalf("iterations = %d, want 3", len(got.Iterations))
	}
	if got.Best != 18 {
		t.Errorf("best = %d, want 18", got.Best)
	}
	if !got.Feasible {
		t.Error("model should report the latest feasibility")
	}
}

func TestWatchModelCapsVisibleIterations(t *testing.T) {
	var model tea.Model = NewWatchModel()
	for i := 0; i < maxVisibleIterations+5; i++ {
		model, _ = model.Update(iterMsg(search.Iteration{Index: i, Objective: i, Best: i}))
	}

	got := model.(WatchModel)
	if len(got.Iterations) != maxVisibleIterations {
		t.Errorf("iterations = %d, want %d", len(got.Iterations), maxVisibleIterations)
	}
	if got.Iterations[0].Index != 5 {
		t.Errorf("oldest visible iteration = %d, want 5", got.Iterations[0].Index)
	}
}

func TestWatchModelQuitsOnDone(t *testing.T) {
	var model tea.Model = NewWatchModel()
	model, cmd := model.Update(doneMsg{})

	if cmd == nil {
		t.Fatal("doneMsg should quit the program")
	}
	if !model.(WatchModel).Done {
		t.Error("model should be marked done")
	}
}

func TestWatchModelAbortsOnQ(t *testing.T) {
	var model tea.Model = NewWatchModel()
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	if cmd == nil {
		t.Fatal("q should quit the program")
	}
	if !model.(WatchModel).Aborted {
		t.Error("model should be marked aborted")
	}
}

func TestWatchModelView(t *testing.T) {
	var model tea.Model = NewWatchModel()
	model, _ = model.Update(iterMsg(search.Iteration{Index: 0, Objective: 14, Best: 14, Feasible: true}))

	view := model.(WatchModel).View()
	if !strings.Contains(view, "Optimizing placement") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "14") {
		t.Error("view missing objective value")
	}
	if !strings.Contains(view, "feasible") {
		t.Error("view missing feasibility state")
	}
}
