// Package supervisor owns the lifecycle of a single supervised child process:
// spawn, non-blocking output capture, bounded-wait exit detection, and
// forceful termination. A Job is designed to be serviced by a single polling
// loop; none of its operations block the caller beyond a short fixed timeout,
// which is what lets one goroutine multiplex many children.
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jobdeck/jobdeck/internal/vterm"
)

// Environment variables passed to every child. The names are a contract with
// child processes and must not change.
const (
	EnvColumns = "COLUMNS"
	EnvLines   = "LINES"
	EnvJobName = "JOBDECK_JOB"
)

const (
	// SpawnFailureExitCode is the sentinel recorded when the child process
	// could not be created at all.
	SpawnFailureExitCode = 127

	// exitWait bounds how long Poll blocks checking whether an apparently
	// idle child has exited.
	exitWait = 100 * time.Millisecond

	readChunk = 32 * 1024
)

// ErrAlreadyStarted is returned by Start on a job that left NotStarted.
var ErrAlreadyStarted = errors.New("job already started")

// Geometry carries the terminal size hints exported to the child so it can
// shape its own output.
type Geometry struct {
	Columns int
	Rows    int
}

// Job supervises one child process. All methods must be called from the same
// goroutine; the only internal concurrency is the waiter goroutine that
// observes process exit, and it communicates exclusively through the done
// channel.
type Job struct {
	name string
	argv []string
	geom Geometry

	phase Phase
	buf   []byte

	cmd    *exec.Cmd
	stdout *os.File
	fd     int
	pid    int

	exitCode int

	// exit is written by the waiter goroutine before done is closed;
	// reading it after <-done is ordered by the channel close.
	exit int
	done chan struct{}
}

// New creates a job for the given label and command vector. Nothing is
// spawned until Start.
func New(name string, argv []string, geom Geometry) *Job {
	return &Job{name: name, argv: argv, geom: geom, phase: PhaseNotStarted}
}

func (j *Job) Name() string { return j.name }

func (j *Job) Phase() Phase { return j.phase }

// PID returns the child's process id, valid only while the job is running.
func (j *Job) PID() int {
	if j.phase != PhaseRunning {
		return 0
	}
	return j.pid
}

// ExitCode reports the child's exit code. It is defined if and only if the
// job has finished.
func (j *Job) ExitCode() (int, bool) {
	if j.phase != PhaseFinished {
		return 0, false
	}
	return j.exitCode, true
}

// Failed reports whether the job finished with a non-zero exit code.
func (j *Job) Failed() bool {
	code, ok := j.ExitCode()
	return ok && code != 0
}

// Start spawns the child process with the job's command vector and an
// environment extended with terminal geometry hints and the job name. The
// combined stdout/stderr pipe is switched to non-blocking mode so Poll can
// read whatever is available without stalling.
//
// A spawn failure finalizes the job immediately with SpawnFailureExitCode;
// the returned error is for reporting, the job itself is already terminal.
func (j *Job) Start() error {
	if j.phase != PhaseNotStarted {
		return fmt.Errorf("start %s: %w", j.name, ErrAlreadyStarted)
	}
	if len(j.argv) == 0 {
		j.phase = PhaseFinished
		j.exitCode = SpawnFailureExitCode
		return fmt.Errorf("start %s: empty command vector", j.name)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		j.phase = PhaseFinished
		j.exitCode = SpawnFailureExitCode
		return fmt.Errorf("start %s: create pipe: %w", j.name, err)
	}

	cmd := exec.Command(j.argv[0], j.argv[1:]...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", EnvColumns, j.geom.Columns),
		fmt.Sprintf("%s=%d", EnvLines, j.geom.Rows),
		fmt.Sprintf("%s=%s", EnvJobName, j.name),
	)

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		j.phase = PhaseFinished
		j.exitCode = SpawnFailureExitCode
		return fmt.Errorf("start %s: %w", j.name, err)
	}
	// The child holds the write end now; closing ours lets reads see EOF
	// once the child exits.
	pw.Close()

	j.fd = int(pr.Fd())
	if err := unix.SetNonblock(j.fd, true); err != nil {
		// Reads would block the loop; better to kill the child than hang.
		_ = cmd.Process.Kill()
		pr.Close()
		j.phase = PhaseFinished
		j.exitCode = SpawnFailureExitCode
		return fmt.Errorf("start %s: set nonblock: %w", j.name, err)
	}

	j.cmd = cmd
	j.stdout = pr
	j.pid = cmd.Process.Pid
	j.done = make(chan struct{})
	j.phase = PhaseRunning

	go func() {
		_ = cmd.Wait()
		j.exit = cmd.ProcessState.ExitCode()
		close(j.done)
	}()

	return nil
}

// Poll reads all currently available output into the job's buffer. If no new
// data arrived, it checks for process exit with a bounded wait: when the
// child has exited it drains the final output, records the exit code, and
// transitions to Finished. Poll never blocks longer than exitWait and is a
// no-op on a job that is not running.
func (j *Job) Poll() {
	if j.phase != PhaseRunning {
		return
	}

	if j.readAvailable() {
		return
	}

	select {
	case <-j.done:
		// Drain whatever the child flushed on its way out.
		for j.readAvailable() {
		}
		j.exitCode = j.exit
		j.finalize()
	case <-time.After(exitWait):
		// still alive, or exit not observed yet; try again next tick
	}
}

// Kill sends a forceful termination signal to a running child. It does not
// transition state itself; the next Poll observes the exit and finalizes.
func (j *Job) Kill() {
	if j.phase != PhaseRunning || j.cmd == nil || j.cmd.Process == nil {
		return
	}
	_ = j.cmd.Process.Kill()
}

// Lines decodes the accumulated output into display lines. Lines longer than
// wrapWidth are split into multiple visual lines; at most the last limitRows
// lines are returned (all of them when limitRows is not positive).
func (j *Job) Lines(limitRows, wrapWidth int) []string {
	lines := vterm.Decode(j.buf)
	lines = vterm.Wrap(lines, wrapWidth)
	return vterm.Tail(lines, limitRows)
}

// readAvailable performs best-effort non-blocking reads, appending to the
// buffer. It reports whether any new bytes arrived. Read errors (including a
// closed stream) are swallowed and treated as "no new data".
func (j *Job) readAvailable() bool {
	if j.stdout == nil {
		return false
	}
	got := false
	chunk := make([]byte, readChunk)
	for {
		n, err := unix.Read(j.fd, chunk)
		if n > 0 {
			j.buf = append(j.buf, chunk[:n]...)
			got = true
			continue
		}
		if err == unix.EINTR {
			continue
		}
		// n == 0 with nil err is EOF; EAGAIN means nothing buffered.
		// Anything else is a transient read error we ignore.
		return got
	}
}

// finalize releases the process handle after the exit code is recorded.
func (j *Job) finalize() {
	j.phase = PhaseFinished
	if j.stdout != nil {
		j.stdout.Close()
		j.stdout = nil
	}
	j.cmd = nil
	j.pid = 0
}
