package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are process-wide options read only from the environment.
type Settings struct {
	DataDir  string `env:"GILLESPIE_DATA" envDefault:".gillespie"`
	LogLevel string `env:"GILLESPIE_LOG_LEVEL" envDefault:"info"`
}

// Overrides are run options that, when set in the environment, replace the
// values from a config file or preset.
type Overrides struct {
	Sampler *string `env:"GILLESPIE_SAMPLER"`
	Samples *int    `env:"GILLESPIE_SAMPLES"`
	Seed    *int64  `env:"GILLESPIE_SEED"`
	Runs    *int    `env:"GILLESPIE_RUNS"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// ApplyEnv overwrites cfg fields whose override variable is set.
func ApplyEnv(cfg *Config) error {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.Sampler != nil {
		cfg.Sampler = *o.Sampler
	}
	if o.Samples != nil {
		cfg.Samples = *o.Samples
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.Runs != nil {
		cfg.Runs = *o.Runs
	}
	return nil
}
