package sampling

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/gillespie/internal/ssa"
)

// cancellation is checked once per this many draws
const checkEvery = 1024

type SourceFunc func(seed int64) ssa.Source

func defaultSource(seed int64) ssa.Source {
	return rand.New(rand.NewSource(seed))
}

// Runner draws events from a fixed propensity table. It never changes the
// table between draws.
type Runner struct {
	metrics   []Metric
	observers []Observer
	source    SourceFunc
}

func New() *Runner {
	return &Runner{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		source:    defaultSource,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// WithSource replaces the seeded math/rand source used for each run.
func (r *Runner) WithSource(f SourceFunc) *Runner {
	r.source = f
	return r
}

// Build creates a sampler of the configured kind loaded with the table.
func Build(cfg Config) (ssa.Sampler, error) {
	kind := cfg.Sampler
	if kind == "" {
		kind = ssa.KindDirect
	}
	s, err := ssa.New(kind, len(cfg.Propensities))
	if err != nil {
		return nil, err
	}
	for k, p := range cfg.Propensities {
		if err := s.Update(k, p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s, err := Build(cfg)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.MaxRetries
	switch {
	case maxRetries < 0:
		maxRetries = 0
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	}

	result := &Result{
		Seed:    cfg.Seed,
		Counts:  make([]int, s.Size()),
		Metrics: make(map[string]float64),
	}
	if cfg.KeepEvents {
		result.Events = make([]ssa.Event, 0, cfg.Samples)
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	src := r.source(cfg.Seed)
	start := time.Now()
	t := 0.0
	streak := 0

	for i := 0; i < cfg.Samples; {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		ev, err := s.Next(src)
		if errors.Is(err, ssa.ErrLadderExhausted) && streak < maxRetries {
			streak++
			result.Retries++
			continue
		}
		if err != nil {
			return result, &RunError{Draw: i, Time: t, Wrapped: err}
		}
		streak = 0

		t += ev.Dt
		result.Counts[ev.Key]++
		if cfg.KeepEvents {
			result.Events = append(result.Events, ev)
		}
		for _, m := range r.metrics {
			m.Observe(ev)
		}
		for _, obs := range r.observers {
			obs.OnEvent(ev, t)
		}
		i++
	}

	result.Elapsed = t
	result.Duration = time.Since(start).Seconds()
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Samples <= 0 {
		return fmt.Errorf("%w, got %d", ErrNoSamples, cfg.Samples)
	}
	if len(cfg.Propensities) == 0 {
		return ErrNoEvents
	}
	return nil
}
