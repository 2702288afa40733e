// Package config loads solver settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// MaxFileSize caps config files read by Load.
const MaxFileSize = 1 << 20

var validate = validator.New()

// Config holds the solver settings.
type Config struct {
	Mode             string        `yaml:"mode" validate:"omitempty,oneof=inmatch in-match prematch pre-match"`
	MaxDelta         int           `yaml:"max_delta" validate:"gte=0,lte=10000"`
	MaxCutoff        int           `yaml:"max_cutoff" validate:"gte=0,lte=1000000"`
	Timeout          time.Duration `yaml:"timeout" validate:"gte=0"`
	IterationTimeout time.Duration `yaml:"iteration_timeout" validate:"gte=0"`
	MaxVariables     int           `yaml:"max_variables" validate:"gte=0"`
	MaxConstraints   int           `yaml:"max_constraints" validate:"gte=0"`
	Parallelism      int           `yaml:"parallelism" validate:"gte=0,lte=1024"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:           core.InMatch.String(),
		MaxDelta:       algo.DefaultMaxDelta,
		MaxCutoff:      algo.DefaultMaxCutoff,
		MaxVariables:   5_000_000,
		MaxConstraints: 20_000_000,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return cfg, fmt.Errorf("config %s too large: %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MatchMode returns the parsed mode.
func (c Config) MatchMode() core.MatchMode {
	m, _ := core.ParseMatchMode(c.Mode)
	return m
}

// SolverOptions converts the settings into solver options.
func (c Config) SolverOptions() algo.SATOptions {
	return algo.SATOptions{
		Mode:             c.MatchMode(),
		MaxDelta:         c.MaxDelta,
		MaxCutoff:        c.MaxCutoff,
		Timeout:          c.Timeout,
		IterationTimeout: c.IterationTimeout,
		Limits: algo.Limits{
			MaxVariables:   c.MaxVariables,
			MaxConstraints: c.MaxConstraints,
		},
		Parallelism: c.Parallelism,
	}
}
