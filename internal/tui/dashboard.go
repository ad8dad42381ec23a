package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jobdeck/jobdeck/internal/status"
)

// IsInteractive reports whether f is attached to a terminal. The caller uses
// it to choose between the dashboard and the plain sink.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// pane is one pane's staged content.
type pane struct {
	title string
	lines []string
}

// frame is everything the dashboard shows for one tick.
type frame struct {
	panes []pane
	rows  []status.Row
}

type frameMsg frame

// runDoneMsg ends the run. Unless cancelled or noWait, the dashboard stays up
// until a key is pressed so the final pane contents remain readable.
type runDoneMsg struct {
	failed    int
	cancelled bool
}

type clockMsg time.Time

// geometry is shared between the dispatch goroutine (PaneSize) and the
// bubbletea goroutine (WindowSizeMsg).
type geometry struct {
	mu     sync.Mutex
	width  int
	height int
	panes  int
	jobs   int
}

func (g *geometry) set(w, h int) {
	g.mu.Lock()
	g.width = w
	g.height = h
	g.mu.Unlock()
}

// paneSize derives the usable text area of one pane from the terminal size,
// after the header, status table, and help line take their share.
func (g *geometry) paneSize() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := g.width - 8
	if w < 20 {
		w = 20
	}

	tableHeight := g.jobs
	if tableHeight > 10 {
		tableHeight = 10
	}
	// margins 2, header box 4, status box tableHeight+4, help 1
	avail := g.height - 2 - 4 - (tableHeight + 4) - 1
	h := avail/g.panes - 3 // border and title per pane
	if h < 3 {
		h = 3
	}
	return w, h
}

// Dashboard bridges the dispatch loop and the bubbletea program. Paint and
// PaintStatus are called from the dispatch goroutine; they stage the frame
// and hand it to the program once per tick, on PaintStatus.
type Dashboard struct {
	prog *tea.Program
	geom *geometry

	mu     sync.Mutex
	staged []pane
}

// NewDashboard builds the dashboard for a run of jobCount jobs across panes
// panes. Pressing q or ctrl+c invokes cancel. Unless noWait is set, the
// dashboard waits for a keypress after the run completes.
func NewDashboard(panes, jobCount int, noWait bool, cancel context.CancelFunc) *Dashboard {
	g := &geometry{panes: panes, jobs: jobCount, width: 80, height: 24}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		g.set(w, h)
	}

	m := newModel(panes, noWait, cancel, g)
	d := &Dashboard{
		prog:   tea.NewProgram(m),
		geom:   g,
		staged: make([]pane, panes),
	}
	return d
}

// Run blocks until the program exits.
func (d *Dashboard) Run() error {
	_, err := d.prog.Run()
	return err
}

// Finish tells the dashboard the run is over.
func (d *Dashboard) Finish(failed int, cancelled bool) {
	d.prog.Send(runDoneMsg{failed: failed, cancelled: cancelled})
}

func (d *Dashboard) PaneSize(pane int) (int, int) {
	return d.geom.paneSize()
}

func (d *Dashboard) Paint(idx int, title string, lines []string) {
	d.mu.Lock()
	if idx >= 0 && idx < len(d.staged) {
		d.staged[idx] = pane{title: title, lines: lines}
	}
	d.mu.Unlock()
}

// PaintStatus completes the tick's frame and ships it to the program.
func (d *Dashboard) PaintStatus(rows []status.Row) {
	d.mu.Lock()
	f := frame{
		panes: append([]pane(nil), d.staged...),
		rows:  rows,
	}
	d.mu.Unlock()
	d.prog.Send(frameMsg(f))
}

// --- Model ---

type model struct {
	theme  Theme
	cancel context.CancelFunc
	noWait bool
	geom   *geometry

	width  int
	height int

	frame  frame
	table  table.Model
	clock  time.Time
	start  time.Time
	done   bool
	failed int
}

func newModel(panes int, noWait bool, cancel context.CancelFunc, g *geometry) model {
	tableHeight := g.jobs
	if tableHeight > 10 {
		tableHeight = 10
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "PID", Width: 8},
			{Title: "Job", Width: 28},
			{Title: "State", Width: 12},
		}),
		table.WithHeight(tableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return model{
		theme:  NewDefaultTheme(),
		cancel: cancel,
		noWait: noWait,
		geom:   g,
		frame:  frame{panes: make([]pane, panes)},
		table:  t,
		clock:  time.Now(),
		start:  time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.geom.set(msg.Width, msg.Height)
		m.table.SetWidth(m.width - 8)

	case frameMsg:
		m.frame = frame(msg)
		m.table.SetRows(m.statusRows())

	case runDoneMsg:
		m.done = true
		m.failed = msg.failed
		if m.noWait || msg.cancelled {
			return m, tea.Quit
		}

	case clockMsg:
		m.clock = time.Time(msg)
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
	}

	return m, nil
}

func (m model) statusRows() []table.Row {
	rows := make([]table.Row, 0, len(m.frame.rows))
	for _, r := range m.frame.rows {
		glyph := r.Glyph
		switch r.State {
		case status.StateRunning:
			glyph = m.theme.StatusRunning.Render(glyph)
		case status.StateSuccess:
			glyph = m.theme.StatusOK.Render(glyph)
		case status.StateFail:
			glyph = m.theme.StatusFailed.Render(glyph)
		default:
			glyph = m.theme.StatusIdle.Render(glyph)
		}
		rows = append(rows, table.Row{glyph, r.PID, r.Name, r.State})
	}
	return rows
}

func (m model) View() string {
	if m.width == 0 {
		return "Starting jobdeck..."
	}

	parts := []string{m.renderHeader()}
	for _, p := range m.frame.panes {
		parts = append(parts, m.renderPane(p))
	}
	parts = append(parts, m.renderStatus(), m.renderHelp())

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m model) renderHeader() string {
	innerWidth := m.width - 4

	title := m.theme.Header.Render(" JOBDECK")
	clock := m.theme.Dim.Render(m.clock.Format("15:04:05"))

	pad := innerWidth - lipgloss.Width(title) - lipgloss.Width(clock) - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := title + strings.Repeat(" ", pad) + clock + " "

	var running, finished, failed int
	for _, r := range m.frame.rows {
		switch r.State {
		case status.StateRunning:
			running++
		case status.StateSuccess:
			finished++
		case status.StateFail:
			finished++
			failed++
		}
	}
	statsLine := fmt.Sprintf(" Jobs: %d  Running: %d  Done: %d  Failed: %s  Elapsed: %s",
		len(m.frame.rows),
		running,
		finished,
		m.renderFailedCount(failed),
		formatElapsed(m.clock.Sub(m.start)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine)
	return m.theme.Border.Width(innerWidth).Render(content)
}

func (m model) renderFailedCount(failed int) string {
	s := strconv.Itoa(failed)
	if failed > 0 {
		return m.theme.StatusFailed.Render(s)
	}
	return s
}

func (m model) renderPane(p pane) string {
	innerWidth := m.width - 4
	_, h := m.geom.paneSize()

	title := p.title
	if title == "" {
		title = "idle"
	}

	lines := make([]string, h)
	copy(lines, p.lines)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(title),
		lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")),
	)
	return m.theme.Border.Width(innerWidth).Render(content)
}

func (m model) renderStatus() string {
	innerWidth := m.width - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Jobs"),
		m.table.View(),
	)
	return m.theme.Border.Width(innerWidth).Render(content)
}

func (m model) renderHelp() string {
	if m.done {
		verdict := m.theme.StatusOK.Render("all jobs succeeded")
		if m.failed > 0 {
			verdict = m.theme.StatusFailed.Render(fmt.Sprintf("%d job(s) failed", m.failed))
		}
		return fmt.Sprintf(" Run complete: %s • press any key to exit", verdict)
	}
	return m.theme.Dim.Render(" [q] Cancel run")
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
