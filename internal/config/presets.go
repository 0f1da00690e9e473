package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/gillespie/internal/ssa"
)

var Presets = map[string]*Config{
	"boundary": {
		Name: "boundary", Sampler: ssa.KindDirect, Samples: 100000, Seed: 1, Runs: 1,
		Events: []EventConfig{{"a", 1.0}, {"b", 0.0}, {"c", 3.0}},
	},
	"birth_death": {
		Name: "birth_death", Sampler: ssa.KindDirect, Samples: 100000, Seed: 1, Runs: 1,
		Events: []EventConfig{{"birth", 10.0}, {"death", 4.2}},
	},
	"uniform": {
		Name: "uniform", Sampler: ssa.KindDirect, Samples: 200000, Seed: 1, Runs: 4,
		Events: []EventConfig{{"a", 1}, {"b", 1}, {"c", 1}, {"d", 1}, {"e", 1}, {"f", 1}},
	},
	"skewed": {
		Name: "skewed", Sampler: ssa.KindDirect, Samples: 500000, Seed: 1, Runs: 1,
		Events: []EventConfig{{"slow", 0.01}, {"medium", 1}, {"fast", 100}, {"fastest", 1000}},
	},
	"sparse": {
		Name: "sparse", Sampler: ssa.KindIndexed, Samples: 200000, Seed: 1, Runs: 2,
		Events: sparseEvents(256, 17),
	},
}

// sparseEvents declares n events of which every stride-th has a positive
// rate proportional to its index.
func sparseEvents(n, stride int) []EventConfig {
	events := make([]EventConfig, n)
	for i := range events {
		events[i].Name = fmt.Sprintf("r%d", i)
		if i%stride == 0 {
			events[i].Rate = float64(i/stride + 1)
		}
	}
	return events
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := cfg.Clone()
	cp.MaxRetries = DefaultMaxRetries
	return cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
