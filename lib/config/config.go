// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deckgraph/deckgraph/lib/policy"
	"github.com/deckgraph/deckgraph/lib/template"
)

// EnvironmentVariable names the configuration file read by Load.
const EnvironmentVariable = "DECKGRAPH_CONFIG"

// Config is the master configuration for deckgraph.
type Config struct {
	// Logging configures the CLI logger.
	Logging LoggingConfig `yaml:"logging"`

	// Policy selects the copy/share classification tables.
	Policy PolicyConfig `yaml:"policy"`

	// Template configures captured model files.
	Template TemplateConfig `yaml:"template"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	// Default: warn
	Level string `yaml:"level"`

	// Format is auto, text or json. auto writes text to a terminal and
	// JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

// PolicyConfig selects the classification tables. Inline Tables win
// over File; with neither, the embedded default policy applies.
type PolicyConfig struct {
	// File is a JSONC document in the format of the embedded default.
	File string `yaml:"file"`

	// Tables are inline classification tables.
	Tables *policy.Tables `yaml:"tables,omitempty"`
}

// TemplateConfig configures captured model files.
type TemplateConfig struct {
	// Compression is none, lz4 or zstd.
	// Default: zstd
	Compression string `yaml:"compression"`

	// Directory is where capture writes models given by bare file
	// name, and where stamp looks for them.
	// Default: current directory
	Directory string `yaml:"directory"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "auto",
		},
		Template: TemplateConfig{
			Compression: "zstd",
		},
	}
}

// Load loads configuration from the file named by DECKGRAPH_CONFIG.
// When the variable is unset the defaults are returned; there is no
// other place a configuration file is looked for.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Policy.File = expandVars(c.Policy.File, vars)
	c.Template.Directory = expandVars(c.Template.Directory, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
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

// Validate checks the configuration for errors. It compiles the policy
// tables, so an unknown relationship or content type is reported here.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if _, err := template.ParseCompression(c.Template.Compression); err != nil {
		errs = append(errs, fmt.Errorf("template.compression: %w", err))
	}

	if _, err := c.Rules(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Rules compiles the configured policy.
func (c *Config) Rules() (*policy.Policy, error) {
	switch {
	case c.Policy.Tables != nil:
		return c.Policy.Tables.Compile()
	case c.Policy.File != "":
		tables, err := policy.ReadFile(c.Policy.File)
		if err != nil {
			return nil, err
		}
		return tables.Compile()
	default:
		return policy.Default(), nil
	}
}

// Compression returns the configured model compression.
func (c *Config) Compression() (template.Compression, error) {
	return template.ParseCompression(c.Template.Compression)
}

// ParseLevel parses a log level name.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
	return level, nil
}
