// Package config loads the optional runcap YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file is absent or a field is unset.
const (
	DefaultShell         = "sh"
	DefaultStatsInterval = 500 * time.Millisecond
)

// Config holds the parsed configuration. All fields are optional; zero
// values represent defaults.
type Config struct {
	Shell            string `yaml:"shell"`          // interpreter for --shell runs
	RawStatsInterval string `yaml:"stats_interval"` // e.g. "500ms", "2s"
	Transcript       string `yaml:"transcript"`     // default --output path
	Color            string `yaml:"color"`          // "auto", "always", or "never"
}

// ShellCommand returns the configured shell or the default.
func (c *Config) ShellCommand() string {
	if c.Shell != "" {
		return c.Shell
	}
	return DefaultShell
}

// StatsInterval returns the configured sampling interval or the default.
func (c *Config) StatsInterval() time.Duration {
	if c.RawStatsInterval != "" {
		d, err := time.ParseDuration(c.RawStatsInterval)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultStatsInterval
}

// ColorMode returns the configured color mode, falling back to "auto".
func (c *Config) ColorMode() string {
	switch c.Color {
	case "always", "never":
		return c.Color
	}
	return "auto"
}

// Load reads the configuration file. The path is taken from RUNCAP_CONFIG
// if set, otherwise ~/.config/runcap/config.yaml. A missing file yields a
// default Config, not an error.
func Load() (*Config, error) {
	path := os.Getenv("RUNCAP_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(home, ".config", "runcap", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
