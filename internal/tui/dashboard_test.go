package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/internal/status"
)

func testModel(noWait bool, cancelled *bool) model {
	g := &geometry{panes: 2, jobs: 3, width: 100, height: 40}
	return newModel(2, noWait, func() { *cancelled = true }, g)
}

func TestModelFrameUpdatesView(t *testing.T) {
	var cancelled bool
	m := testModel(false, &cancelled)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(model)

	next, _ = m.Update(frameMsg{
		panes: []pane{{title: "conv.dot", lines: []string{"pass 1"}}, {}},
		rows: []status.Row{
			{Glyph: "|", PID: "9", Name: "conv.dot", State: status.StateRunning},
			{Glyph: " ", Name: "fft.dot", State: status.StateNotStarted},
		},
	})
	m = next.(model)

	view := m.View()
	assert.Contains(t, view, "conv.dot")
	assert.Contains(t, view, "pass 1")
	assert.Contains(t, view, "Running: 1")
}

func TestModelQuitKeysCancelTheRun(t *testing.T) {
	var cancelled bool
	m := testModel(false, &cancelled)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(model)

	assert.True(t, cancelled, "q must cancel the run context")
	assert.Nil(t, cmd, "the program exits when the pool reports cancellation, not before")
}

func TestModelCompletionPause(t *testing.T) {
	var cancelled bool
	m := testModel(false, &cancelled)

	next, cmd := m.Update(runDoneMsg{failed: 1})
	m = next.(model)
	assert.Nil(t, cmd, "without no-wait the dashboard stays up")
	m.width = 100
	assert.Contains(t, m.View(), "press any key")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.NotNil(t, cmd, "any key after completion quits")
}

func TestModelNoWaitQuitsImmediately(t *testing.T) {
	var cancelled bool
	m := testModel(true, &cancelled)

	_, cmd := m.Update(runDoneMsg{})
	require.NotNil(t, cmd, "no-wait skips the completion pause")
}

func TestGeometryPaneSize(t *testing.T) {
	g := &geometry{panes: 3, jobs: 4, width: 120, height: 48}
	w, h := g.paneSize()
	assert.Equal(t, 112, w)
	// 48 - 2 - 4 - (4+4) - 1 = 33 over 3 panes, minus border and title.
	assert.Equal(t, 8, h)

	g.set(40, 10)
	w, h = g.paneSize()
	assert.Equal(t, 32, w)
	assert.Equal(t, 3, h, "pane height never drops below the floor")
}
