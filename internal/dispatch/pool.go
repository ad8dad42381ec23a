// Package dispatch owns the pool of supervised jobs: it enforces the
// concurrency ceiling, drives the per-tick poll/render cycle, and rotates
// which running jobs occupy the visible panes.
//
// The pool is single-threaded by construction. One goroutine calls Run and
// owns every piece of mutable state (queue, running set, rotation cursor);
// everything the outside world learns about a run arrives through the Sink or
// the events hub.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobdeck/jobdeck/internal/events"
	"github.com/jobdeck/jobdeck/internal/log"
	"github.com/jobdeck/jobdeck/internal/status"
	"github.com/jobdeck/jobdeck/internal/supervisor"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks github.com/jobdeck/jobdeck/internal/dispatch Sink

// Sink receives rendered output once per tick. Implementations must not
// block; the dispatch loop calls them synchronously.
type Sink interface {
	// PaneSize reports the usable text area of a pane.
	PaneSize(pane int) (width, height int)
	// Paint replaces a pane's content. Empty title and nil lines blank it.
	Paint(pane int, title string, lines []string)
	// PaintStatus replaces the aggregate status table.
	PaintStatus(rows []status.Row)
}

// Config shapes one run of the pool.
type Config struct {
	Ceiling        int
	Panes          int
	RotationPeriod int
	TickInterval   time.Duration
}

// Pool dispatches queued jobs up to the ceiling, polls the running set, and
// renders a rotating window of them to the sink.
type Pool struct {
	cfg Config

	jobs    []*supervisor.Job // all jobs, input order, never reordered
	queued  []*supervisor.Job
	running []*supervisor.Job

	cursor int
	ticks  int

	table  *status.Table
	sink   Sink
	hub    *events.Hub
	logger *slog.Logger
}

// New creates a pool over the given jobs. The ceiling is clamped to the job
// count and the pane count to the ceiling, mirroring config validation for
// callers that build Config by hand.
func New(jobs []*supervisor.Job, cfg Config, sink Sink, hub *events.Hub) *Pool {
	if cfg.Ceiling > len(jobs) {
		cfg.Ceiling = len(jobs)
	}
	if cfg.Panes > cfg.Ceiling {
		cfg.Panes = cfg.Ceiling
	}
	if cfg.RotationPeriod < 1 {
		cfg.RotationPeriod = 1
	}
	if hub == nil {
		hub = events.NewHub(128)
	}
	return &Pool{
		cfg:    cfg,
		jobs:   jobs,
		queued: append([]*supervisor.Job(nil), jobs...),
		table:  status.NewTable(jobs),
		sink:   sink,
		hub:    hub,
		logger: log.WithComponent("dispatch"),
	}
}

// Run drives the tick loop until every job has finished or ctx is cancelled.
// On cancellation all running jobs are killed and polled to completion before
// Run returns, so no child outlives the loop.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("run started",
		"jobs", len(p.jobs),
		"ceiling", p.cfg.Ceiling,
		"panes", p.cfg.Panes,
	)
	p.hub.Publish(events.TypeRunStarted, map[string]any{
		"jobs":    len(p.jobs),
		"ceiling": p.cfg.Ceiling,
		"panes":   p.cfg.Panes,
	})

	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	for {
		if done := p.Tick(); done {
			break
		}
		select {
		case <-ctx.Done():
			p.shutdown()
			p.hub.Publish(events.TypeRunCancelled, map[string]any{
				"failed": p.FailedCount(),
			})
			p.logger.Warn("run cancelled", "failed", p.FailedCount())
			return ctx.Err()
		case <-ticker.C:
		}
	}

	p.hub.Publish(events.TypeRunCompleted, map[string]any{
		"failed": p.FailedCount(),
	})
	p.logger.Info("run completed", "failed", p.FailedCount())
	return nil
}

// Tick executes one dispatch cycle: dispatch, poll, pane selection, render,
// reap, in that order. A job started this tick is rendered this tick, and a
// job that finished this tick is rendered once more before being reaped.
// It reports whether every job has finished.
func (p *Pool) Tick() bool {
	p.dispatch()
	p.poll()
	visible := p.selectVisible()
	p.render(visible)
	p.reap()
	p.ticks++
	return p.allFinished()
}

// RunningCount returns the size of the running set.
func (p *Pool) RunningCount() int { return len(p.running) }

// QueuedCount returns the number of jobs not yet started.
func (p *Pool) QueuedCount() int { return len(p.queued) }

// FailedCount returns the number of finished jobs with non-zero exit codes.
func (p *Pool) FailedCount() int {
	n := 0
	for _, j := range p.jobs {
		if j.Failed() {
			n++
		}
	}
	return n
}

// Failed reports whether any job failed.
func (p *Pool) Failed() bool { return p.FailedCount() > 0 }

func (p *Pool) dispatch() {
	for len(p.running) < p.cfg.Ceiling && len(p.queued) > 0 {
		j := p.queued[0]
		p.queued = p.queued[1:]

		if err := j.Start(); err != nil {
			// The job is already finalized with the spawn-failure exit
			// code; it still joins the running set so this tick renders
			// it once before reap picks it up and reports the exit.
			p.logger.Error("job spawn failed", "job", j.Name(), "error", err)
		} else {
			p.logger.Info("job started", "job", j.Name(), "pid", j.PID())
			p.hub.Publish(events.TypeJobStarted, map[string]any{
				"name": j.Name(),
				"pid":  j.PID(),
			})
		}
		p.running = append(p.running, j)
	}

	if len(p.running) > p.cfg.Ceiling {
		// Programming error; the ceiling is the whole point of the pool.
		panic(fmt.Sprintf("dispatch: running set %d exceeds ceiling %d",
			len(p.running), p.cfg.Ceiling))
	}
}

func (p *Pool) poll() {
	for _, j := range p.running {
		j.Poll()
	}
}

// selectVisible picks the window of running jobs occupying the panes. With
// ceiling <= panes every running job is visible and the cursor never moves.
// Otherwise the cursor advances by the pane count every RotationPeriod ticks,
// so a visible job keeps its pane until the window rotates past it.
func (p *Pool) selectVisible() []*supervisor.Job {
	if p.cfg.Ceiling <= p.cfg.Panes {
		return p.running
	}

	if p.ticks > 0 && p.ticks%p.cfg.RotationPeriod == 0 {
		p.cursor = (p.cursor + p.cfg.Panes) % p.cfg.Ceiling
	}

	if len(p.running) == 0 {
		return nil
	}

	n := min(p.cfg.Panes, len(p.running))
	start := p.cursor % len(p.running)
	visible := make([]*supervisor.Job, 0, n)
	for i := 0; i < n; i++ {
		visible = append(visible, p.running[(start+i)%len(p.running)])
	}
	return visible
}

func (p *Pool) render(visible []*supervisor.Job) {
	for i := 0; i < p.cfg.Panes; i++ {
		if i < len(visible) {
			w, h := p.sink.PaneSize(i)
			p.sink.Paint(i, visible[i].Name(), visible[i].Lines(h, w))
		} else {
			p.sink.Paint(i, "", nil)
		}
	}

	p.table.Advance()
	rows := p.table.Rows()
	p.sink.PaintStatus(rows)
	p.hub.Publish(events.TypeStatusSnapshot, rows)
}

func (p *Pool) reap() {
	kept := p.running[:0]
	for _, j := range p.running {
		if j.Phase() == supervisor.PhaseFinished {
			code, _ := j.ExitCode()
			p.logger.Info("job finished", "job", j.Name(), "exit", code)
			p.hub.Publish(events.TypeJobFinished, map[string]any{
				"name": j.Name(),
				"exit": code,
			})
			continue
		}
		kept = append(kept, j)
	}
	p.running = kept
}

func (p *Pool) allFinished() bool {
	for _, j := range p.jobs {
		if j.Phase() != supervisor.PhaseFinished {
			return false
		}
	}
	return true
}

// shutdown kills every running job and polls the pool until the kills are
// observed, so cancellation leaves no orphaned children behind.
func (p *Pool) shutdown() {
	p.queued = nil // never started, nothing to kill

	for _, j := range p.running {
		j.Kill()
	}
	for !p.runningDrained() {
		p.poll()
		p.reap()
	}
}

func (p *Pool) runningDrained() bool {
	return len(p.running) == 0
}
