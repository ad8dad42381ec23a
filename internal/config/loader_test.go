package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
run:
  panes: 2
  ceiling: 3
  tick_interval: 50ms
  rotation_period: 5
  no_wait: true
log:
  level: debug
  file: ""
command: ["mapper", "--verbose"]
jobs:
  - name: conv.dot
  - name: fft.dot
    args: ["--unroll", "2"]
  - name: simple.dot
  - name: extra.dot
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Run.Panes)
	assert.Equal(t, 3, cfg.Run.Ceiling)
	assert.Equal(t, 50*time.Millisecond, cfg.Run.Tick())
	assert.Equal(t, 5, cfg.Run.RotationPeriod)
	assert.True(t, cfg.Run.NoWait)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Jobs, 4)

	assert.Equal(t, []string{"mapper", "--verbose"}, cfg.Argv(cfg.Jobs[0]))
	assert.Equal(t, []string{"mapper", "--verbose", "--unroll", "2"}, cfg.Argv(cfg.Jobs[1]))
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
command: ["true"]
jobs:
  - name: a
  - name: b
  - name: c
  - name: d
  - name: e
`))
	require.NoError(t, err)

	def := Defaults()
	assert.Equal(t, def.Run.Panes, cfg.Run.Panes)
	assert.Equal(t, def.Run.Ceiling, cfg.Run.Ceiling)
	assert.Equal(t, 100*time.Millisecond, cfg.Run.Tick())
	assert.Equal(t, def.Run.RotationPeriod, cfg.Run.RotationPeriod)
	assert.Equal(t, def.Log.File, cfg.Log.File)
	assert.False(t, cfg.API.Enabled)
}

func TestValidateClampsPanesAndCeiling(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
run:
  panes: 10
  ceiling: 8
command: ["true"]
jobs:
  - name: only
  - name: two
`))
	require.NoError(t, err)

	// Ceiling clamps to the job count, panes clamp to the ceiling.
	assert.Equal(t, 2, cfg.Run.Ceiling)
	assert.Equal(t, 2, cfg.Run.Panes)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing command",
			content: "jobs:\n  - name: a\n",
			wantErr: "command",
		},
		{
			name:    "missing jobs",
			content: "command: [\"true\"]\n",
			wantErr: "jobs",
		},
		{
			name:    "duplicate job names",
			content: "command: [\"true\"]\njobs:\n  - name: a\n  - name: a\n",
			wantErr: "duplicate",
		},
		{
			name:    "unnamed job",
			content: "command: [\"true\"]\njobs:\n  - args: [\"x\"]\n",
			wantErr: "name is required",
		},
		{
			name:    "bad tick interval",
			content: "run:\n  tick_interval: soon\ncommand: [\"true\"]\njobs:\n  - name: a\n",
			wantErr: "tick_interval",
		},
		{
			name:    "zero ceiling",
			content: "run:\n  ceiling: 0\ncommand: [\"true\"]\njobs:\n  - name: a\n",
			wantErr: "ceiling",
		},
		{
			name:    "api enabled without listen",
			content: "api:\n  enabled: true\n  listen: \"\"\ncommand: [\"true\"]\njobs:\n  - name: a\n",
			wantErr: "api.listen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDigest(t *testing.T) {
	path := writeConfig(t, validConfig)

	d1, err := Digest(path)
	require.NoError(t, err)
	assert.Len(t, d1, 64)

	d2, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "digest must be deterministic")

	require.NoError(t, os.WriteFile(path, []byte(validConfig+"\n# touched\n"), 0o644))
	d3, err := Digest(path)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}
