// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "DOCDESK_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development against a backend on the
	// same machine.
	Development Environment = "development"
	// Production is for a shared backend.
	Production Environment = "production"
)

// Config is the docdesk configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment" json:"environment"`

	// Server locates the question-answering backend.
	Server ServerConfig `yaml:"server" json:"server"`

	// Layout sets the initial split geometry, in terminal columns.
	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// Zoom tunes the document zoom gesture.
	Zoom ZoomConfig `yaml:"zoom" json:"zoom"`

	// Logging controls the status bar threshold and the optional log file.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Per-environment overrides, applied after the file is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment. Only non-zero fields replace base values.
type ConfigOverrides struct {
	Server  *ServerConfig  `yaml:"server,omitempty" json:"server,omitempty"`
	Layout  *LayoutConfig  `yaml:"layout,omitempty" json:"layout,omitempty"`
	Zoom    *ZoomConfig    `yaml:"zoom,omitempty" json:"zoom,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	// BaseURL is the backend root. The upload/ and query/ endpoints are
	// resolved against it.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout bounds a single upload or query (Go duration syntax).
	Timeout string `yaml:"timeout" json:"timeout"`
}

// LayoutConfig sets the split geometry.
type LayoutConfig struct {
	MinWidth     int `yaml:"min_width" json:"min_width"`
	InitialWidth int `yaml:"initial_width" json:"initial_width"`
}

// ZoomConfig tunes the zoom gesture.
type ZoomConfig struct {
	// Step is the scale change per wheel notch.
	Step float64 `yaml:"step" json:"step"`

	// Floor is the smallest scale zoom-out can reach.
	Floor float64 `yaml:"floor" json:"floor"`

	// Modifier is the key that turns the wheel over the document into
	// zoom: shift, ctrl or alt.
	Modifier string `yaml:"modifier" json:"modifier"`
}

// LoggingConfig controls logging.
type LoggingConfig struct {
	// Level is the minimum level shown: debug, info, warn or error.
	Level string `yaml:"level" json:"level"`

	// Output is an optional file that receives every record as JSON.
	Output string `yaml:"output" json:"output"`
}

var (
	modifierValues = []string{"shift", "ctrl", "alt"}
	levelValues    = []string{"debug", "info", "warn", "error"}
)

// Default returns the built-in configuration, used as-is when no
// config file is named.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			BaseURL: "http://localhost:8000/",
			Timeout: "2m",
		},
		Layout: LayoutConfig{
			MinWidth:     24,
			InitialWidth: 60,
		},
		Zoom: ZoomConfig{
			Step:     0.1,
			Floor:    0.1,
			Modifier: "shift",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads the file named by DOCDESK_CONFIG. When the variable is
// unset the defaults are returned.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Files ending in .json or
// .jsonc are parsed as JSON with comments and trailing commas; anything
// else is parsed as YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production defaults: only warnings reach the status bar.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		if overrides.Server.BaseURL != "" {
			c.Server.BaseURL = overrides.Server.BaseURL
		}
		if overrides.Server.Timeout != "" {
			c.Server.Timeout = overrides.Server.Timeout
		}
	}

	if overrides.Layout != nil {
		if overrides.Layout.MinWidth != 0 {
			c.Layout.MinWidth = overrides.Layout.MinWidth
		}
		if overrides.Layout.InitialWidth != 0 {
			c.Layout.InitialWidth = overrides.Layout.InitialWidth
		}
	}

	if overrides.Zoom != nil {
		if overrides.Zoom.Step != 0 {
			c.Zoom.Step = overrides.Zoom.Step
		}
		if overrides.Zoom.Floor != 0 {
			c.Zoom.Floor = overrides.Zoom.Floor
		}
		if overrides.Zoom.Modifier != "" {
			c.Zoom.Modifier = overrides.Zoom.Modifier
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Output != "" {
			c.Logging.Output = overrides.Logging.Output
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in the URL and
// the log path.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Server.BaseURL = expandVars(c.Server.BaseURL, vars)
	c.Logging.Output = expandVars(c.Logging.Output, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// take precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.BaseURL == "" {
		errs = append(errs, fmt.Errorf("server.base_url is required"))
	} else if parsed, err := url.Parse(c.Server.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("server.base_url: %w", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Errorf("server.base_url must be an http or https URL, got %q", c.Server.BaseURL))
	}

	if timeout, err := time.ParseDuration(c.Server.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("server.timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout))
	}

	if c.Layout.MinWidth <= 0 {
		errs = append(errs, fmt.Errorf("layout.min_width must be positive, got %d", c.Layout.MinWidth))
	}
	if c.Layout.InitialWidth <= 0 {
		errs = append(errs, fmt.Errorf("layout.initial_width must be positive, got %d", c.Layout.InitialWidth))
	}

	if c.Zoom.Step <= 0 {
		errs = append(errs, fmt.Errorf("zoom.step must be positive, got %g", c.Zoom.Step))
	}
	if c.Zoom.Floor <= 0 {
		errs = append(errs, fmt.Errorf("zoom.floor must be positive, got %g", c.Zoom.Floor))
	}
	if !contains(modifierValues, c.Zoom.Modifier) {
		errs = append(errs, fmt.Errorf("zoom.modifier must be one of: %v", modifierValues))
	}

	if !contains(levelValues, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levelValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequestTimeout returns the parsed server timeout. Call Validate first;
// an unparseable value yields zero.
func (c *Config) RequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0
	}
	return timeout
}

// SlogLevel returns the logging level as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func contains(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}
