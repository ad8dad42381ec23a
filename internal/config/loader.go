package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, and validates a run configuration file. Defaults are
// applied first so the file only needs to state what differs.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", absPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration. The pane count is
// clamped to the ceiling (more panes than concurrent jobs would just sit
// blank), and the ceiling is clamped to the job count.
func (c *Config) Validate() error {
	if len(c.Command) == 0 {
		return fmt.Errorf("command: shared command template is required")
	}
	if len(c.Jobs) == 0 {
		return fmt.Errorf("jobs: at least one job is required")
	}

	seen := make(map[string]bool, len(c.Jobs))
	for i, j := range c.Jobs {
		if j.Name == "" {
			return fmt.Errorf("jobs[%d]: name is required", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("jobs[%d]: duplicate job name %q", i, j.Name)
		}
		seen[j.Name] = true
	}

	if c.Run.Ceiling < 1 {
		return fmt.Errorf("run.ceiling: must be at least 1, got %d", c.Run.Ceiling)
	}
	if c.Run.Panes < 1 {
		return fmt.Errorf("run.panes: must be at least 1, got %d", c.Run.Panes)
	}
	if c.Run.RotationPeriod < 1 {
		return fmt.Errorf("run.rotation_period: must be at least 1, got %d", c.Run.RotationPeriod)
	}

	if c.Run.Ceiling > len(c.Jobs) {
		c.Run.Ceiling = len(c.Jobs)
	}
	if c.Run.Panes > c.Run.Ceiling {
		c.Run.Panes = c.Run.Ceiling
	}

	tick, err := ParseInterval(c.Run.TickInterval)
	if err != nil {
		return fmt.Errorf("run.tick_interval: %w", err)
	}
	if tick <= 0 {
		return fmt.Errorf("run.tick_interval: must be positive, got %s", tick)
	}
	c.Run.tick = tick

	if c.API.Enabled && c.API.Listen == "" {
		return fmt.Errorf("api.listen: required when api.enabled is true")
	}

	return nil
}

// ParseInterval converts a duration string from config to a time.Duration.
func ParseInterval(interval string) (time.Duration, error) {
	if interval == "" {
		return 0, fmt.Errorf("empty interval")
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", interval, err)
	}
	return d, nil
}
