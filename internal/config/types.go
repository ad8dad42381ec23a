package config

import "time"

// Config is the complete jobdeck run configuration.
type Config struct {
	Run     RunConfig   `yaml:"run"`
	Log     LogConfig   `yaml:"log"`
	API     APIConfig   `yaml:"api,omitempty"`
	Command []string    `yaml:"command"`
	Jobs    []JobConfig `yaml:"jobs"`
}

// RunConfig shapes the dispatch loop: how many children may run at once, how
// many panes are on screen, and how fast the loop ticks.
type RunConfig struct {
	Panes          int    `yaml:"panes"`
	Ceiling        int    `yaml:"ceiling"`
	TickInterval   string `yaml:"tick_interval"` // duration string, e.g. "100ms"
	RotationPeriod int    `yaml:"rotation_period"`
	NoWait         bool   `yaml:"no_wait"`

	// tick is TickInterval parsed during validation.
	tick time.Duration
}

// Tick returns the parsed tick interval. Valid after Load.
func (r RunConfig) Tick() time.Duration { return r.tick }

// LogConfig defines run log settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// APIConfig defines the optional read-only status API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// JobConfig is one job descriptor: a label plus optional arguments appended
// to the shared command template. The label is also exported to the child via
// the environment.
type JobConfig struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args,omitempty"`
}

// Argv builds the job's full command vector from the shared template.
func (c *Config) Argv(j JobConfig) []string {
	argv := make([]string, 0, len(c.Command)+len(j.Args))
	argv = append(argv, c.Command...)
	argv = append(argv, j.Args...)
	return argv
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Run: RunConfig{
			Panes:          3,
			Ceiling:        4,
			TickInterval:   "100ms",
			RotationPeriod: 10,
			NoWait:         false,
		},
		Log: LogConfig{
			Level: "info",
			File:  "jobdeck.log",
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:7717",
		},
	}
}
