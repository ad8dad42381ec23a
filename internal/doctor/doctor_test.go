package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck/internal/config"
)

func loadConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestValidateHealthyConfig(t *testing.T) {
	cfg := loadConfig(t, `
command: ["sh", "-c", "true"]
jobs:
  - name: a
  - name: b
log:
  file: ""
`)
	r := New(cfg).Validate()
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestValidateCommandNotOnPath(t *testing.T) {
	cfg := loadConfig(t, `
command: ["definitely-not-a-real-binary-xyz"]
jobs:
  - name: a
log:
  file: ""
`)
	r := New(cfg).Validate()
	require.False(t, r.Valid)
	assert.Equal(t, "command", r.Errors[0].Category)
	assert.Contains(t, r.Errors[0].Message, "not found on PATH")
}

func TestValidateLogDirMissing(t *testing.T) {
	cfg := loadConfig(t, `
command: ["sh"]
jobs:
  - name: a
log:
  file: /nonexistent-dir-xyz/run.log
`)
	r := New(cfg).Validate()
	require.False(t, r.Valid)
	assert.Equal(t, "log", r.Errors[0].Category)
}

func TestValidateBadListenAddress(t *testing.T) {
	cfg := loadConfig(t, `
command: ["sh"]
jobs:
  - name: a
log:
  file: ""
api:
  enabled: true
  listen: "not-an-address"
`)
	r := New(cfg).Validate()
	require.False(t, r.Valid)
	assert.Equal(t, "api", r.Errors[0].Category)
}

func TestTimingWarnings(t *testing.T) {
	cfg := loadConfig(t, `
run:
  tick_interval: 2s
  rotation_period: 20
command: ["sh"]
jobs:
  - name: a
  - name: b
log:
  file: ""
`)
	r := New(cfg).Validate()
	assert.True(t, r.Valid, "timing issues warn, they do not fail")

	categories := make(map[string]int)
	for _, w := range r.Warnings {
		categories[w.Category]++
	}
	// slow tick plus a 40s rotation period
	assert.Equal(t, 2, categories["timing"])
}

func TestOversubscriptionWarning(t *testing.T) {
	cfg := config.Defaults()
	cfg.Command = []string{"sh"}
	cfg.Log.File = ""
	for i := 0; i < 1024; i++ {
		cfg.Jobs = append(cfg.Jobs, config.JobConfig{Name: fmt.Sprintf("job-%d", i)})
	}
	cfg.Run.Ceiling = 1024
	require.NoError(t, cfg.Validate())

	r := New(cfg).Validate()
	assert.True(t, r.Valid)

	var found bool
	for _, w := range r.Warnings {
		if w.Category == "resources" {
			found = true
		}
	}
	assert.True(t, found, "a ceiling of 1024 should warn about oversubscription")
}

func TestFormatHuman(t *testing.T) {
	r := &Result{Valid: true}
	assert.Equal(t, "Configuration valid.\n", FormatHuman(r))

	r = &Result{
		Errors:   []Issue{{Category: "command", Field: "command", Message: "missing"}},
		Warnings: []Issue{{Category: "timing", Message: "slow"}},
	}
	out := FormatHuman(r)
	assert.Contains(t, out, "Configuration invalid (1 error(s), 1 warning(s))")
	assert.Contains(t, out, "ERROR [command] command: missing")
	assert.Contains(t, out, "WARN  [timing] slow")
}

func TestFormatJSON(t *testing.T) {
	r := &Result{Valid: false, Errors: []Issue{{Category: "jobs", Message: "dup"}}}
	out, err := FormatJSON(r)
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": false`)
	assert.Contains(t, out, `"category": "jobs"`)
}
