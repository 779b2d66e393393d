// Package config loads qmprobe CLI configuration from an optional
// .qmprobe.yaml file, applies environment overrides, and supplies
// defaults. The library core (internal/probe) does not read config;
// everything here is plumbed in by cmd/qmprobe.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory
// when no --config flag is given.
const DefaultFileName = ".qmprobe.yaml"

// Config holds all qmprobe settings.
type Config struct {
	// Qmake is the oracle binary. Empty means discover: discovered
	// command first, then $QMAKE, then PATH search.
	Qmake string `yaml:"qmake"`

	// Make is the build driver used for command discovery.
	Make string `yaml:"make"`

	// KeepGoing disables fail-fast: resolution errors become warnings
	// and absent values.
	KeepGoing bool `yaml:"keep_going"`

	// Logging configures the zap backend.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	File   string `yaml:"file"`   // empty = stderr
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Make: "make",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. An empty path
// means DefaultFileName.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFileName
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is the common case.
	default:
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the file values.
// QMPROBE_* variables win over the generic QMAKE/MAKE ones.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QMAKE"); v != "" {
		c.Qmake = v
	}
	if v := os.Getenv("MAKE"); v != "" {
		c.Make = v
	}
	if v := os.Getenv("QMPROBE_QMAKE"); v != "" {
		c.Qmake = v
	}
	if v := os.Getenv("QMPROBE_MAKE"); v != "" {
		c.Make = v
	}
	if v := os.Getenv("QMPROBE_KEEP_GOING"); v != "" {
		c.KeepGoing = v != "0" && v != "false"
	}
}

func (c *Config) validate() error {
	if c.Make == "" {
		return fmt.Errorf("config: make binary must not be empty")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unknown logging format %q", c.Logging.Format)
	}
	return nil
}
