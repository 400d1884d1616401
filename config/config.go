// Package config provides configuration loading and access for the grid
// force-field tools.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tunable parameters.
type Config struct {
	ForceField ForceFieldConfig `yaml:"forcefield"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Scan       ScanConfig       `yaml:"scan"`
	Output     OutputConfig     `yaml:"output"`
}

// ForceFieldConfig holds grid potential term parameters.
type ForceFieldConfig struct {
	Strength   float64 `yaml:"strength"`    // Global multiplier applied to every atom's grid energy
	RestraintK float64 `yaml:"restraint_k"` // Harmonic stiffness for out-of-grid coordinates (kJ/mol/nm^2)
	MaxCap     float64 `yaml:"max_cap"`     // Saturation cap for tabulated values; <= 0 disables
}

// ParallelConfig holds per-atom parallel evaluation parameters.
type ParallelConfig struct {
	Threshold int `yaml:"threshold"` // Minimum atom count before evaluation goes parallel
	Workers   int `yaml:"workers"`   // Worker count; 0 = GOMAXPROCS
}

// ScanConfig holds parameters for the gridscan tool.
type ScanConfig struct {
	Samples int     `yaml:"samples"` // Points per scan line
	Margin  float64 `yaml:"margin"`  // Fraction of extent to keep clear of the hull when scanning
}

// OutputConfig holds output settings for the command-line tools.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Output directory; empty disables CSV output
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects parameter values the numeric core cannot work with.
func (c *Config) validate() error {
	if c.ForceField.RestraintK <= 0 {
		return fmt.Errorf("config: restraint_k must be positive, got %g", c.ForceField.RestraintK)
	}
	if c.Parallel.Threshold < 1 {
		return fmt.Errorf("config: parallel threshold must be at least 1, got %d", c.Parallel.Threshold)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Parallel.Workers)
	}
	if c.Scan.Samples < 2 {
		return fmt.Errorf("config: scan samples must be at least 2, got %d", c.Scan.Samples)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
