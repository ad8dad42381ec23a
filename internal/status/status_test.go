package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/internal/supervisor"
)

func finish(t *testing.T, j *supervisor.Job) {
	t.Helper()
	require.Eventually(t, func() bool {
		j.Poll()
		return j.Phase() == supervisor.PhaseFinished
	}, 10*time.Second, 10*time.Millisecond)
}

func TestRowsForEachPhase(t *testing.T) {
	idle := supervisor.New("idle", []string{"/bin/sh", "-c", "exit 0"}, supervisor.Geometry{})
	good := supervisor.New("good", []string{"/bin/sh", "-c", "exit 0"}, supervisor.Geometry{})
	bad := supervisor.New("bad", []string{"/bin/sh", "-c", "exit 2"}, supervisor.Geometry{})
	slow := supervisor.New("slow", []string{"/bin/sh", "-c", "sleep 60"}, supervisor.Geometry{})

	require.NoError(t, good.Start())
	require.NoError(t, bad.Start())
	require.NoError(t, slow.Start())
	finish(t, good)
	finish(t, bad)
	defer func() {
		slow.Kill()
		finish(t, slow)
	}()

	table := NewTable([]*supervisor.Job{idle, good, bad, slow})
	rows := table.Rows()
	require.Len(t, rows, 4)

	assert.Equal(t, Row{Name: "idle", State: StateNotStarted}, rows[0])
	assert.Equal(t, Row{Name: "good", State: StateSuccess, Glyph: GlyphSuccess}, rows[1])
	assert.Equal(t, Row{Name: "bad", State: StateFail, Glyph: GlyphFail}, rows[2])

	assert.Equal(t, "slow", rows[3].Name)
	assert.Equal(t, StateRunning, rows[3].State)
	assert.NotEmpty(t, rows[3].PID)
	assert.NotEmpty(t, rows[3].Glyph)
}

func TestSpinnerAdvances(t *testing.T) {
	slow := supervisor.New("spin", []string{"/bin/sh", "-c", "sleep 60"}, supervisor.Geometry{})
	require.NoError(t, slow.Start())
	defer func() {
		slow.Kill()
		finish(t, slow)
	}()

	table := NewTable([]*supervisor.Job{slow})

	seen := map[string]bool{}
	for range len(spinnerFrames) {
		seen[table.Rows()[0].Glyph] = true
		table.Advance()
	}
	assert.Len(t, seen, len(spinnerFrames), "spinner must cycle through all frames")

	// A full cycle returns to the first frame.
	assert.Equal(t, spinnerFrames[0], table.Rows()[0].Glyph)
}
