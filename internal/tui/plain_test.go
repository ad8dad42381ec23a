package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobdeck/jobdeck/internal/status"
)

func TestPlainPrintsTransitionsOnce(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	running := []status.Row{{Glyph: "|", PID: "42", Name: "conv.dot", State: status.StateRunning}}
	p.PaintStatus(running)
	p.PaintStatus(running)
	p.PaintStatus(running)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "running"), "same state must not repeat")
	assert.Contains(t, out, "conv.dot")
	assert.Contains(t, out, "pid 42")

	p.PaintStatus([]status.Row{{Glyph: "✔", Name: "conv.dot", State: status.StateSuccess}})
	assert.Contains(t, buf.String(), "success")
}

func TestPlainIgnoresNotStarted(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.PaintStatus([]status.Row{{Glyph: " ", Name: "queued-job", State: status.StateNotStarted}})
	assert.Empty(t, buf.String(), "queued jobs make no noise")
}

func TestPlainPaneGeometry(t *testing.T) {
	p := NewPlain(&bytes.Buffer{})
	w, h := p.PaneSize(0)
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}
