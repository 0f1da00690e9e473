package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gillespie/internal/ssa"
)

const (
	DefaultSamples    = 100000
	DefaultSeed       = 1
	DefaultRuns       = 1
	DefaultMaxRetries = 8
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Name       string        `yaml:"name"`
	Sampler    string        `yaml:"sampler"`
	Samples    int           `yaml:"samples"`
	Seed       int64         `yaml:"seed"`
	Runs       int           `yaml:"runs"`
	MaxRetries int           `yaml:"max_retries"` // negative disables redraws
	Events     []EventConfig `yaml:"events"`
}

// EventConfig declares one event key. Keys are assigned in list order.
type EventConfig struct {
	Name string  `yaml:"name"`
	Rate float64 `yaml:"rate"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Sampler:    ssa.KindDirect,
		Samples:    DefaultSamples,
		Seed:       DefaultSeed,
		Runs:       DefaultRuns,
		MaxRetries: DefaultMaxRetries,
		Events: []EventConfig{
			{Name: "a", Rate: 1.0},
			{Name: "b", Rate: 0.0},
			{Name: "c", Rate: 3.0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Events = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects tables the sampler would accept but produce garbage from,
// such as negative or NaN rates.
func (c *Config) Validate() error {
	if len(c.Events) == 0 {
		return fmt.Errorf("%w: no events declared", ErrInvalidConfig)
	}
	if c.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, c.Samples)
	}
	if c.Runs <= 0 {
		return fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidConfig, c.Runs)
	}
	if _, err := ssa.New(c.Sampler, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	total := 0.0
	for i, ev := range c.Events {
		if math.IsNaN(ev.Rate) || math.IsInf(ev.Rate, 0) || ev.Rate < 0 {
			return fmt.Errorf("%w: event %d (%s) has rate %v", ErrInvalidConfig, i, ev.Name, ev.Rate)
		}
		total += ev.Rate
	}
	if total <= 0 {
		return fmt.Errorf("%w: every rate is zero", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Propensities() []float64 {
	p := make([]float64, len(c.Events))
	for i, ev := range c.Events {
		p[i] = ev.Rate
	}
	return p
}

// EventNames returns the declared names, falling back to "k<i>" for unnamed
// events.
func (c *Config) EventNames() []string {
	names := make([]string, len(c.Events))
	for i, ev := range c.Events {
		if ev.Name != "" {
			names[i] = ev.Name
		} else {
			names[i] = fmt.Sprintf("k%d", i)
		}
	}
	return names
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Events = make([]EventConfig, len(c.Events))
	copy(cp.Events, c.Events)
	return &cp
}
