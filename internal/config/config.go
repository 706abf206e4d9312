package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const levelDisabled = "disabled"

// Config represents the bsh.yaml interpreter configuration.
type Config struct {
	// StrictJava disables loose scripting conveniences: undeclared variables,
	// untyped catch parameters and untyped method parameters are errors.
	StrictJava bool `yaml:"strict_java"`

	// Trace logs every evaluated statement at trace level.
	Trace bool `yaml:"trace"`

	// MaxEvalDepth bounds nested method invocations on one call stack.
	// Zero means DefaultMaxEvalDepth.
	MaxEvalDepth int `yaml:"max_eval_depth,omitempty"`

	// CatchEvalErrors lets script try/catch intercept evaluation errors
	// (undefined names, bad casts), presented as EvalException.
	CatchEvalErrors bool `yaml:"catch_eval_errors"`

	// Imports are extra packages imported into every global scope.
	Imports []string `yaml:"imports,omitempty"`

	// LogLevel is a zerolog level name ("debug", "info", ...). Defaults to "disabled".
	LogLevel string `yaml:"log_level,omitempty"`

	// Color controls ANSI decoration of console errors: auto, always or never.
	Color string `yaml:"color,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads and parses a bsh.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses bsh.yaml content from bytes.
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

// FindConfig searches for bsh.yaml starting from dir and walking up
// to parent directories. Returns "" and a nil error when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.MaxEvalDepth < 0 {
		return fmt.Errorf("max_eval_depth must not be negative, got %d", c.MaxEvalDepth)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of %s, %s, %s; got %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	for i, imp := range c.Imports {
		if imp == "" || strings.HasPrefix(imp, ".") || strings.HasSuffix(imp, ".") {
			return fmt.Errorf("imports[%d]: malformed package name %q", i, imp)
		}
	}
	return nil
}

// Level returns the parsed zerolog level. Validate must have passed.
func (c *Config) Level() zerolog.Level {
	if c.Trace {
		return zerolog.TraceLevel
	}
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Disabled
	}
	return lvl
}

func parseLevel(name string) (zerolog.Level, error) {
	if strings.EqualFold(name, levelDisabled) {
		return zerolog.Disabled, nil
	}
	return zerolog.ParseLevel(strings.ToLower(name))
}

// EvalDepth returns the effective invocation depth limit.
func (c *Config) EvalDepth() int {
	if c.MaxEvalDepth == 0 {
		return DefaultMaxEvalDepth
	}
	return c.MaxEvalDepth
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = levelDisabled
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
}
