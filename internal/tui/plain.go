package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jobdeck/jobdeck/internal/status"
)

// Plain is the non-interactive sink: one line per job state transition,
// nothing else. Pane output goes nowhere; redirected runs read the log file
// instead.
type Plain struct {
	out io.Writer

	mu   sync.Mutex
	seen map[string]string
}

func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out, seen: make(map[string]string)}
}

// PaneSize reports a fixed geometry so children still get sane COLUMNS and
// LINES hints.
func (p *Plain) PaneSize(int) (int, int) { return 80, 24 }

func (p *Plain) Paint(int, string, []string) {}

func (p *Plain) PaintStatus(rows []status.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range rows {
		if p.seen[r.Name] == r.State {
			continue
		}
		p.seen[r.Name] = r.State

		ts := time.Now().Format("15:04:05")
		switch r.State {
		case status.StateRunning:
			fmt.Fprintf(p.out, "%s %-28s running (pid %s)\n", ts, r.Name, r.PID)
		case status.StateSuccess, status.StateFail:
			fmt.Fprintf(p.out, "%s %-28s %s\n", ts, r.Name, r.State)
		}
	}
}
