// Package status derives the aggregate job summary shown under the panes.
// It is a read-only view over supervisor state; the only mutable piece is the
// spinner frame counter driving the running glyph's animation.
package status

import (
	"strconv"

	"github.com/jobdeck/jobdeck/internal/supervisor"
)

// Display states for the summary table.
const (
	StateNotStarted = "not started"
	StateRunning    = "running"
	StateSuccess    = "success"
	StateFail       = "fail"
)

// Glyphs for terminal states. Running jobs animate through spinnerFrames.
const (
	GlyphSuccess = "✔"
	GlyphFail    = "✘"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Row is one job's display triple plus its label.
type Row struct {
	Glyph string `json:"glyph"`
	PID   string `json:"pid"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Table derives summary rows for a fixed set of jobs.
type Table struct {
	jobs  []*supervisor.Job
	frame int
}

func NewTable(jobs []*supervisor.Job) *Table {
	return &Table{jobs: jobs}
}

// Advance moves the spinner to its next frame. Call once per tick.
func (t *Table) Advance() {
	t.frame = (t.frame + 1) % len(spinnerFrames)
}

// Rows returns the current summary, one row per job in input order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.jobs))
	for i, j := range t.jobs {
		rows[i] = t.row(j)
	}
	return rows
}

func (t *Table) row(j *supervisor.Job) Row {
	r := Row{Name: j.Name()}
	switch j.Phase() {
	case supervisor.PhaseNotStarted:
		r.State = StateNotStarted
	case supervisor.PhaseRunning:
		r.State = StateRunning
		r.Glyph = spinnerFrames[t.frame]
		r.PID = strconv.Itoa(j.PID())
	case supervisor.PhaseFinished:
		if j.Failed() {
			r.State = StateFail
			r.Glyph = GlyphFail
		} else {
			r.State = StateSuccess
			r.Glyph = GlyphSuccess
		}
	}
	return r
}
