// Package config holds interpreter constants and the YAML-backed runtime
// configuration shared by the CLI, the embedding API and the rpc server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AssignMode selects what happens when code assigns to a name that no
// scope has declared.
type AssignMode string

const (
	// AssignLoose creates the binding in the outermost scope.
	AssignLoose AssignMode = "loose"
	// AssignStrict fails with a name-resolution error.
	AssignStrict AssignMode = "strict"
)

// Config represents jswalk.yaml.
type Config struct {
	// AssignMode controls assignment to undeclared names. Defaults to loose.
	AssignMode AssignMode `yaml:"assign_mode,omitempty"`

	// MaxSteps bounds the number of evaluated nodes per program, including
	// callbacks run by the event loop. Zero means unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// MaxCallDepth bounds nested guest calls.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// MaxArrayLength bounds how far an array may grow. Arrays are stored
	// densely, so this also bounds the memory one array can take.
	MaxArrayLength int `yaml:"max_array_length,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// NoColor disables colored log output.
	NoColor bool `yaml:"no_color,omitempty"`

	// Serve configures the remote evaluation service.
	Serve ServeConfig `yaml:"serve,omitempty"`
}

// ServeConfig configures the gRPC listener.
type ServeConfig struct {
	// Addr is a host:port to listen on, e.g. "127.0.0.1:7070".
	Addr string `yaml:"addr,omitempty"`

	// MaxSteps is the step budget for each request when the top-level
	// max_steps is unset.
	MaxSteps int `yaml:"max_steps,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses jswalk.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// RequestMaxSteps is the step budget for one remote evaluation. It is
// never unlimited.
func (c *Config) RequestMaxSteps() int {
	switch {
	case c.MaxSteps > 0:
		return c.MaxSteps
	case c.Serve.MaxSteps > 0:
		return c.Serve.MaxSteps
	}
	return DefaultServeMaxSteps
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.AssignMode {
	case AssignLoose, AssignStrict:
	default:
		return fmt.Errorf("assign_mode: unknown mode %q (want loose or strict)", c.AssignMode)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps: must not be negative, got %d", c.MaxSteps)
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth: must not be negative, got %d", c.MaxCallDepth)
	}
	if c.MaxArrayLength < 0 || int64(c.MaxArrayLength) > MaxArrayLength {
		return fmt.Errorf("max_array_length: must be between 0 and %d, got %d", int64(MaxArrayLength), c.MaxArrayLength)
	}
	if c.Serve.MaxSteps < 0 {
		return fmt.Errorf("serve.max_steps: must not be negative, got %d", c.Serve.MaxSteps)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.AssignMode == "" {
		c.AssignMode = AssignLoose
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}
	if c.MaxArrayLength == 0 {
		c.MaxArrayLength = DefaultMaxArrayLength
	}
	if c.Serve.MaxSteps == 0 {
		c.Serve.MaxSteps = DefaultServeMaxSteps
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
