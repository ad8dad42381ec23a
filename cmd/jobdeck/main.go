package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/jobdeck/jobdeck/internal/api"
	"github.com/jobdeck/jobdeck/internal/config"
	"github.com/jobdeck/jobdeck/internal/dispatch"
	"github.com/jobdeck/jobdeck/internal/doctor"
	"github.com/jobdeck/jobdeck/internal/events"
	"github.com/jobdeck/jobdeck/internal/lock"
	"github.com/jobdeck/jobdeck/internal/log"
	"github.com/jobdeck/jobdeck/internal/supervisor"
	"github.com/jobdeck/jobdeck/internal/tui"
)

const version = "0.1.0"

// Exit codes: 0 all jobs succeeded, 1 any job failed or the run was cut
// short, 2 usage or configuration error.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		os.Exit(runRun(args))
	case "check":
		os.Exit(runCheck(args))
	case "version":
		fmt.Printf("jobdeck version %s\n", version)
		os.Exit(exitOK)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(exitUsage)
	}
}

func printUsage() {
	fmt.Print(`jobdeck - run a pool of child processes behind a live dashboard

Usage:
  jobdeck run [flags] <config.yaml>
  jobdeck check [flags] <config.yaml>
  jobdeck version
  jobdeck help

Run flags:
  -panes N       override the number of output panes
  -procs N       override the concurrency ceiling
  -tick D        override the tick interval (e.g. 100ms)
  -rotate N      override the pane rotation period, in ticks
  -no-wait       exit as soon as the run completes
  -plain         line output even when stdout is a terminal
  -listen ADDR   serve the read-only status API on ADDR
  -log-level L   override the log level
  -log-file F    override the run log path

Check flags:
  -json          machine-readable report

Exit status: 0 all jobs succeeded, 1 any job failed, 2 usage or config error.
`)
}

// runFlags are the command-line overrides for a run. Zero values mean "use
// the config file".
type runFlags struct {
	panes    int
	procs    int
	rotate   int
	tick     time.Duration
	noWait   bool
	plain    bool
	listen   string
	logLevel string
	logFile  string
}

// applyOverrides folds command-line flags into the loaded config and
// revalidates, so overrides get the same clamping the file does.
func applyOverrides(cfg *config.Config, f runFlags) error {
	if f.panes > 0 {
		cfg.Run.Panes = f.panes
	}
	if f.procs > 0 {
		cfg.Run.Ceiling = f.procs
	}
	if f.rotate > 0 {
		cfg.Run.RotationPeriod = f.rotate
	}
	if f.tick > 0 {
		cfg.Run.TickInterval = f.tick.String()
	}
	if f.noWait {
		cfg.Run.NoWait = true
	}
	if f.listen != "" {
		cfg.API.Enabled = true
		cfg.API.Listen = f.listen
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	return cfg.Validate()
}

func runRun(args []string) int {
	var f runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.IntVar(&f.panes, "panes", 0, "number of output panes")
	fs.IntVar(&f.procs, "procs", 0, "concurrency ceiling")
	fs.IntVar(&f.rotate, "rotate", 0, "pane rotation period in ticks")
	fs.DurationVar(&f.tick, "tick", 0, "tick interval")
	fs.BoolVar(&f.noWait, "no-wait", false, "exit as soon as the run completes")
	fs.BoolVar(&f.plain, "plain", false, "force line output")
	fs.StringVar(&f.listen, "listen", "", "status API listen address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
	fs.StringVar(&f.logFile, "log-file", "", "run log path")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: jobdeck run [flags] <config.yaml>\n")
		return exitUsage
	}
	configPath := fs.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitUsage
	}
	if err := applyOverrides(cfg, f); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitUsage
	}

	if cfg.Log.File != "" {
		runLock, err := lock.Acquire(cfg.Log.File + ".lock")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Another run is writing %s: %v\n", cfg.Log.File, err)
			return exitFailed
		}
		defer runLock.Release()
	}

	if err := log.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Log setup error: %v\n", err)
		return exitUsage
	}
	defer log.Close()

	runID := uuid.NewString()
	logger := log.WithRun(runID).With("component", "main")

	digest, err := config.Digest(configPath)
	if err != nil {
		logger.Warn("config digest failed", "error", err)
	}
	logger.Info("jobdeck starting",
		"version", version,
		"config", configPath,
		"config_digest", digest,
		"jobs", len(cfg.Jobs),
		"ceiling", cfg.Run.Ceiling,
		"panes", cfg.Run.Panes,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	hub := events.NewHub(256)

	interactive := tui.IsInteractive(os.Stdout) && !f.plain
	var sink dispatch.Sink
	var dash *tui.Dashboard
	if interactive {
		dash = tui.NewDashboard(cfg.Run.Panes, len(cfg.Jobs), cfg.Run.NoWait, cancel)
		sink = dash
	} else {
		sink = tui.NewPlain(os.Stdout)
	}

	// Children inherit the pane geometry so their output fits the screen.
	width, height := sink.PaneSize(0)
	jobs := make([]*supervisor.Job, 0, len(cfg.Jobs))
	for _, jc := range cfg.Jobs {
		jobs = append(jobs, supervisor.New(jc.Name, cfg.Argv(jc), supervisor.Geometry{
			Columns: width,
			Rows:    height,
		}))
	}

	pool := dispatch.New(jobs, dispatch.Config{
		Ceiling:        cfg.Run.Ceiling,
		Panes:          cfg.Run.Panes,
		RotationPeriod: cfg.Run.RotationPeriod,
		TickInterval:   cfg.Run.Tick(),
	}, sink, hub)

	if cfg.API.Enabled {
		server := api.New(api.Config{Listen: cfg.API.Listen}, runID, hub, log.WithComponent("api"))
		go func() {
			if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("status API failed", "error", err)
			}
		}()
	}

	var runErr error
	if interactive {
		done := make(chan struct{})
		go func() {
			runErr = pool.Run(ctx)
			dash.Finish(pool.FailedCount(), errors.Is(runErr, context.Canceled))
			close(done)
		}()
		if err := dash.Run(); err != nil {
			logger.Error("dashboard failed", "error", err)
		}
		cancel()
		<-done
	} else {
		runErr = pool.Run(ctx)
	}

	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(os.Stderr, "run cancelled")
		return exitFailed
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", runErr)
		return exitFailed
	}
	if pool.Failed() {
		fmt.Fprintf(os.Stderr, "%d job(s) failed\n", pool.FailedCount())
		return exitFailed
	}
	return exitOK
}

func runCheck(args []string) int {
	var jsonOut bool
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.BoolVar(&jsonOut, "json", false, "machine-readable report")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: jobdeck check [flags] <config.yaml>\n")
		return exitUsage
	}
	configPath := fs.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitUsage
	}

	result := doctor.New(cfg).Validate()

	if jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return exitFailed
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
		fmt.Print(terminalReport())
	}

	if !result.Valid {
		return exitFailed
	}
	return exitOK
}

// terminalReport describes which sink a run would get on this terminal.
func terminalReport() string {
	if !tui.IsInteractive(os.Stdout) {
		return "Terminal: not a TTY; runs will use plain line output.\n"
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return fmt.Sprintf("Terminal: interactive, %dx%d; runs will use the dashboard.\n", w, h)
	}
	return "Terminal: interactive; runs will use the dashboard.\n"
}
