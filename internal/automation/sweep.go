package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gillespie/internal/config"
	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/sampling"
)

var ErrInvalidSweep = errors.New("automation: invalid sweep")

// RateSweep samples a table repeatedly while stepping one event's rate
// across [Min, Max].
type RateSweep struct {
	Preset  string  `yaml:"preset"`
	Key     int     `yaml:"key"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Steps   int     `yaml:"steps"`
	Samples int     `yaml:"samples"`
	Seed    int64   `yaml:"seed"`
}

// SweepPoint is the outcome of one rate in the sweep.
type SweepPoint struct {
	Rate     float64
	Total    float64
	Expected float64 // expected share of the swept key
	Observed float64
	PValue   float64
	MeanDt   float64
	Retries  int
}

// LoadSweep loads a sweep definition from a YAML file.
func LoadSweep(path string) (*RateSweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sweep RateSweep
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, err
	}

	return &sweep, nil
}

func (s *RateSweep) validate(base *config.Config) error {
	if s.Steps < 2 {
		return fmt.Errorf("%w: need at least 2 steps, got %d", ErrInvalidSweep, s.Steps)
	}
	if s.Min < 0 || s.Max < s.Min {
		return fmt.Errorf("%w: bad range [%g, %g]", ErrInvalidSweep, s.Min, s.Max)
	}
	if s.Key < 0 || s.Key >= len(base.Events) {
		return fmt.Errorf("%w: key %d outside table of %d events", ErrInvalidSweep, s.Key, len(base.Events))
	}
	return nil
}

// Run executes the sweep against base, which is not modified. Each step uses
// the same seed so the points differ only by the swept rate.
func (s *RateSweep) Run(ctx context.Context, base *config.Config, progress func(i int, p SweepPoint)) ([]SweepPoint, error) {
	if err := s.validate(base); err != nil {
		return nil, err
	}

	samples := s.Samples
	if samples <= 0 {
		samples = base.Samples
	}

	points := make([]SweepPoint, 0, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)

	for i := 0; i < s.Steps; i++ {
		rate := s.Min + float64(i)*step

		props := base.Propensities()
		props[s.Key] = rate

		cfg := sampling.Config{
			Sampler:      base.Sampler,
			Propensities: props,
			Samples:      samples,
			Seed:         s.Seed,
			MaxRetries:   base.MaxRetries,
		}

		mean := metrics.NewMeanDt()
		chi := metrics.NewChiSquare(props)
		r := sampling.New()
		r.AddMetric(mean)
		r.AddMetric(chi)

		result, err := r.Run(ctx, cfg)
		if err != nil {
			return points, fmt.Errorf("step %d (rate %g): %w", i+1, rate, err)
		}

		probs := metrics.Probabilities(props)
		p := SweepPoint{
			Rate:     rate,
			Expected: probs[s.Key],
			Observed: float64(result.Counts[s.Key]) / float64(result.Total()),
			PValue:   chi.PValue(),
			MeanDt:   mean.Value(),
			Retries:  result.Retries,
		}
		for _, v := range props {
			p.Total += v
		}

		points = append(points, p)
		if progress != nil {
			progress(i, p)
		}
	}

	return points, nil
}
