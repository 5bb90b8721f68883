package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/particles/internal/scenario"
	"github.com/san-kum/particles/internal/strategy"
)

const (
	DefaultStrategy  = "default"
	DefaultTimeStep  = 0.0 // use the scenario's own step
	DefaultInterval  = 16 * time.Millisecond
	DefaultThreshold = strategy.DefaultThreshold
	DefaultScenario  = "protoplanetary-disk"
	DefaultDataDir   = "./data"
	DefaultAddr      = ":8080"
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Strategy      string             `yaml:"strategy"`
	TimeStep      float64            `yaml:"time_step"`
	TickInterval  time.Duration      `yaml:"tick_interval"`
	FrameInterval time.Duration      `yaml:"frame_interval"`
	Threshold     float64            `yaml:"threshold"`
	MinSubstep    float64            `yaml:"min_substep"`
	Workers       int                `yaml:"workers"`
	Scenario      string             `yaml:"scenario"`
	Count         int                `yaml:"count"`
	Seed          int64              `yaml:"seed"`
	DataDir       string             `yaml:"data_dir"`
	Addr          string             `yaml:"addr"`
	Template      *scenario.Template `yaml:"template,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Strategy:      DefaultStrategy,
		TimeStep:      DefaultTimeStep,
		TickInterval:  DefaultInterval,
		FrameInterval: DefaultInterval,
		Threshold:     DefaultThreshold,
		Scenario:      DefaultScenario,
		Seed:          1,
		DataDir:       DefaultDataDir,
		Addr:          DefaultAddr,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Merge(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the keys present in the YAML file at path onto cfg.
func Merge(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks configuration ranges. Particle values are never checked
// here.
func (c *Config) Validate() error {
	if _, err := strategy.ParseKind(c.Strategy); err != nil {
		return fmt.Errorf("%w: strategy %q", ErrInvalid, c.Strategy)
	}
	switch {
	case c.TimeStep < 0 || math.IsNaN(c.TimeStep):
		return fmt.Errorf("%w: time_step is negative, got %g", ErrInvalid, c.TimeStep)
	case c.TickInterval < 0:
		return fmt.Errorf("%w: tick_interval is negative", ErrInvalid)
	case c.FrameInterval < 0:
		return fmt.Errorf("%w: frame_interval is negative", ErrInvalid)
	case c.Threshold < 0:
		return fmt.Errorf("%w: threshold is negative", ErrInvalid)
	case c.MinSubstep < 0:
		return fmt.Errorf("%w: min_substep is negative", ErrInvalid)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers is negative", ErrInvalid)
	case c.Count < 0:
		return fmt.Errorf("%w: count is negative", ErrInvalid)
	}
	return nil
}

func (c *Config) Kind() strategy.Kind {
	k, err := strategy.ParseKind(c.Strategy)
	if err != nil {
		return strategy.KindDefault
	}
	return k
}

func (c *Config) StrategyOptions() strategy.Options {
	return strategy.Options{
		Threshold:  c.Threshold,
		MinSubstep: c.MinSubstep,
		Workers:    c.Workers,
	}
}

// ScenarioFor resolves name (or the configured scenario when empty) and
// applies the template, count and time step overrides.
func (c *Config) ScenarioFor(name string) (scenario.Scenario, error) {
	if name == "" {
		name = c.Scenario
	}
	s, err := scenario.Lookup(name)
	if err != nil {
		return s, err
	}
	if c.Template != nil {
		s.Template = *c.Template
	}
	if c.Count > 0 {
		s.Template.Count = c.Count
	}
	if c.TimeStep > 0 {
		s.TimeStep = c.TimeStep
	}
	return s, nil
}
