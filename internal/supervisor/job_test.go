package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pollToFinished(t *testing.T, j *Job) {
	t.Helper()
	require.Eventually(t, func() bool {
		j.Poll()
		return j.Phase() == PhaseFinished
	}, 10*time.Second, 10*time.Millisecond, "job never finished")
}

func TestJobLifecycle(t *testing.T) {
	j := New("demo", []string{"/bin/sh", "-c", "printf 'hello\\n'"}, Geometry{Columns: 80, Rows: 24})

	assert.Equal(t, PhaseNotStarted, j.Phase())
	assert.Equal(t, 0, j.PID())
	_, ok := j.ExitCode()
	assert.False(t, ok, "exit code must be undefined before Finished")

	require.NoError(t, j.Start())
	assert.Equal(t, PhaseRunning, j.Phase())
	assert.Greater(t, j.PID(), 0)

	pollToFinished(t, j)

	code, ok := j.ExitCode()
	require.True(t, ok)
	assert.Equal(t, 0, code)
	assert.False(t, j.Failed())
	assert.Equal(t, 0, j.PID(), "pid is only valid while running")
	assert.Equal(t, []string{"hello"}, j.Lines(0, 0))
}

func TestPollAfterFinishedIsNoop(t *testing.T) {
	j := New("noop", []string{"/bin/sh", "-c", "exit 0"}, Geometry{})
	require.NoError(t, j.Start())
	pollToFinished(t, j)

	before, _ := j.ExitCode()
	j.Poll()
	j.Poll()
	after, ok := j.ExitCode()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, PhaseFinished, j.Phase())
}

func TestStartTwice(t *testing.T) {
	j := New("twice", []string{"/bin/sh", "-c", "exit 0"}, Geometry{})
	require.NoError(t, j.Start())

	err := j.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyStarted)

	pollToFinished(t, j)
	assert.ErrorIs(t, j.Start(), ErrAlreadyStarted)
}

func TestSpawnFailure(t *testing.T) {
	j := New("ghost", []string{"/definitely/not/a/real/binary"}, Geometry{})

	err := j.Start()
	require.Error(t, err)

	assert.Equal(t, PhaseFinished, j.Phase())
	code, ok := j.ExitCode()
	require.True(t, ok)
	assert.Equal(t, SpawnFailureExitCode, code)
	assert.True(t, j.Failed())
}

func TestNonZeroExit(t *testing.T) {
	j := New("fail", []string{"/bin/sh", "-c", "echo boom; exit 3"}, Geometry{})
	require.NoError(t, j.Start())
	pollToFinished(t, j)

	code, ok := j.ExitCode()
	require.True(t, ok)
	assert.Equal(t, 3, code)
	assert.True(t, j.Failed())
	assert.Equal(t, []string{"boom"}, j.Lines(0, 0))
}

func TestKill(t *testing.T) {
	j := New("hang", []string{"/bin/sh", "-c", "sleep 60"}, Geometry{})
	require.NoError(t, j.Start())

	// Kill does not transition state itself; the next poll observes it.
	j.Kill()
	assert.Equal(t, PhaseRunning, j.Phase())

	pollToFinished(t, j)
	assert.True(t, j.Failed())
}

func TestKillOnNotRunningIsNoop(t *testing.T) {
	j := New("idle", []string{"/bin/sh", "-c", "exit 0"}, Geometry{})
	j.Kill() // not started

	require.NoError(t, j.Start())
	pollToFinished(t, j)
	j.Kill() // already finished

	code, ok := j.ExitCode()
	require.True(t, ok)
	assert.Equal(t, 0, code)
}

func TestChildEnvironmentContract(t *testing.T) {
	j := New("env-check", []string{
		"/bin/sh", "-c", `printf '%s %s %s' "$COLUMNS" "$LINES" "$JOBDECK_JOB"`,
	}, Geometry{Columns: 76, Rows: 20})

	require.NoError(t, j.Start())
	pollToFinished(t, j)

	assert.Equal(t, []string{"76 20 env-check"}, j.Lines(0, 0))
}

func TestLinesTailAndWrap(t *testing.T) {
	j := New("tail", []string{"/bin/sh", "-c", "for i in 1 2 3 4 5; do echo line$i; done"}, Geometry{})
	require.NoError(t, j.Start())
	pollToFinished(t, j)

	assert.Equal(t, []string{"line4", "line5"}, j.Lines(2, 0))
	assert.Equal(t, []string{"lin", "e5"}, j.Lines(2, 3))
	assert.Len(t, j.Lines(0, 0), 5)
}

func TestCursorControlOutput(t *testing.T) {
	// The child redraws its line with CR and cursor-left, the decoded view
	// must reflect the final grid rather than the raw stream.
	j := New("redraw", []string{"/bin/sh", "-c", `printf 'AB\033[2DX'`}, Geometry{})
	require.NoError(t, j.Start())
	pollToFinished(t, j)

	assert.Equal(t, []string{"XB"}, j.Lines(0, 0))
}
