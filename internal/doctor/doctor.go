// Package doctor validates a jobdeck run configuration beyond what loading
// enforces: it checks the environment the run would actually execute in.
package doctor

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jobdeck/jobdeck/internal/config"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration against the host.
type Doctor struct {
	cfg *config.Config
}

// New creates a Doctor from a loaded config.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateCommand(r)
	d.validateJobs(r)
	d.validateLogFile(r)
	d.validateAPIConfig(r)
	d.warnTiming(r)
	d.warnOversubscription(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateCommand checks that the shared command resolves to an executable.
func (d *Doctor) validateCommand(r *Result) {
	if len(d.cfg.Command) == 0 {
		d.addError(r, "command", "command", "command is required")
		return
	}
	if _, err := exec.LookPath(d.cfg.Command[0]); err != nil {
		d.addError(r, "command", "command",
			fmt.Sprintf("%q not found on PATH: %v", d.cfg.Command[0], err))
	}
}

// validateJobs re-checks label uniqueness so hand-built configs get the same
// guarantee Load provides.
func (d *Doctor) validateJobs(r *Result) {
	seen := make(map[string]int)
	for i, j := range d.cfg.Jobs {
		if j.Name == "" {
			d.addError(r, "jobs", fmt.Sprintf("jobs[%d]", i), "name is required")
			continue
		}
		if prev, dup := seen[j.Name]; dup {
			d.addError(r, "jobs", fmt.Sprintf("jobs[%d].name", i),
				fmt.Sprintf("duplicate job name %q (also jobs[%d])", j.Name, prev))
		}
		seen[j.Name] = i
	}
}

// validateLogFile checks the run log destination is writable.
func (d *Doctor) validateLogFile(r *Result) {
	if d.cfg.Log.File == "" {
		return
	}
	dir := filepath.Dir(d.cfg.Log.File)
	info, err := os.Stat(dir)
	if err != nil {
		d.addError(r, "log", "log.file",
			fmt.Sprintf("log directory %q: %v", dir, err))
		return
	}
	if !info.IsDir() {
		d.addError(r, "log", "log.file",
			fmt.Sprintf("log directory %q is not a directory", dir))
	}
}

// validateAPIConfig checks the status API listen address parses.
func (d *Doctor) validateAPIConfig(r *Result) {
	if !d.cfg.API.Enabled {
		return
	}
	if d.cfg.API.Listen == "" {
		d.addError(r, "api", "api.listen", "api.listen is required when API is enabled")
		return
	}
	if _, _, err := net.SplitHostPort(d.cfg.API.Listen); err != nil {
		d.addError(r, "api", "api.listen",
			fmt.Sprintf("invalid listen address %q: %v", d.cfg.API.Listen, err))
	}
}

// warnTiming flags tick and rotation settings that make the dashboard either
// burn CPU or feel dead.
func (d *Doctor) warnTiming(r *Result) {
	tick := d.cfg.Run.Tick()
	if tick < 10*time.Millisecond {
		d.addWarning(r, "timing", "run.tick_interval",
			fmt.Sprintf("tick interval %s is very short; polling will dominate", tick))
	}
	if tick > time.Second {
		d.addWarning(r, "timing", "run.tick_interval",
			fmt.Sprintf("tick interval %s is long; output will update sluggishly", tick))
	}
	if rotation := time.Duration(d.cfg.Run.RotationPeriod) * tick; rotation > 30*time.Second {
		d.addWarning(r, "timing", "run.rotation_period",
			fmt.Sprintf("panes rotate every %s; hidden jobs stay hidden a long time", rotation))
	}
}

// warnOversubscription flags a ceiling well past the host's parallelism.
func (d *Doctor) warnOversubscription(r *Result) {
	if cpus := runtime.NumCPU(); d.cfg.Run.Ceiling > 2*cpus {
		d.addWarning(r, "resources", "run.ceiling",
			fmt.Sprintf("ceiling %d exceeds twice the CPU count (%d)", d.cfg.Run.Ceiling, cpus))
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
