package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFetchModelProgress(t *testing.T) {
	m := newFetchModel("Fetching")

	next, _ := m.Update(fetchProgressMsg{done: 3, total: 10})
	next, _ = next.Update(fetchStreamMsg{id: "XX.ABC..BHZ"})
	fm := next.(fetchModel)

	if fm.done != 3 || fm.total != 10 {
		t.Errorf("counter = %d/%d", fm.done, fm.total)
	}
	if fm.streams != 1 || fm.lastID != "XX.ABC..BHZ" {
		t.Errorf("streams = %d, lastID = %q", fm.streams, fm.lastID)
	}

	view := fm.View()
	if !strings.Contains(view, "3/10 pairs") {
		t.Errorf("view missing counter: %q", view)
	}
	if !strings.Contains(view, "XX.ABC..BHZ") {
		t.Errorf("view missing stream id: %q", view)
	}
}

func TestFetchModelQuitsWhenDone(t *testing.T) {
	m := newFetchModel("Fetching")

	_, cmd := m.Update(fetchDoneMsg{})
	if cmd == nil {
		t.Fatal("done message should quit the program")
	}
}

func TestFetchModelAbort(t *testing.T) {
	m := newFetchModel("Fetching")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit the program")
	}
	if !next.(fetchModel).aborted {
		t.Error("q should mark the model aborted")
	}
}

func TestRenderBar(t *testing.T) {
	full := renderBar(10, 10, 4)
	if !strings.Contains(full, strings.Repeat("█", 4)) {
		t.Errorf("full bar = %q", full)
	}
	empty := renderBar(0, 0, 4)
	if !strings.Contains(empty, strings.Repeat("░", 4)) {
		t.Errorf("empty bar = %q", empty)
	}
}
