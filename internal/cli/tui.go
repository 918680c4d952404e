package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchProgressMsg updates the pair counter during event iteration.
type fetchProgressMsg struct {
	done  int
	total int
}

// fetchStreamMsg reports one yielded stream.
type fetchStreamMsg struct {
	id string
}

// fetchDoneMsg ends the program.
type fetchDoneMsg struct {
	err error
}

// fetchModel is the bubbletea model showing event iteration progress. The
// fetch itself runs in a separate goroutine and feeds messages through
// tea.Program.Send.
type fetchModel struct {
	label   string
	done    int
	total   int
	streams int
	lastID  string
	err     error
	aborted bool
}

func newFetchModel(label string) fetchModel {
	return fetchModel{label: label}
}

func (m fetchModel) Init() tea.Cmd {
	return nil
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case fetchProgressMsg:
		m.done = msg.done
		m.total = msg.total
	case fetchStreamMsg:
		m.streams++
		m.lastID = msg.id
	case fetchDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m fetchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.label))
	b.WriteString("\n\n")

	b.WriteString("  " + renderBar(m.done, m.total, 30))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d pairs", m.done, m.total)))
	b.WriteString("\n")

	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d streams", m.streams)))
	if m.lastID != "" {
		b.WriteString(StyleDim.Render("  last: ") + StyleValue.Render(m.lastID))
	}
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("  q abort"))
	b.WriteString("\n")

	return b.String()
}

// renderBar draws a fixed-width progress bar. With an unknown total it stays
// empty.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
		if filled > width {
			filled = width
		}
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styleIconSpinner.Render(bar)
}
