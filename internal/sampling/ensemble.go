package sampling

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MetricsFunc builds a fresh metric set for one run; metrics are stateful and
// must not be shared between goroutines.
type MetricsFunc func(cfg Config) []Metric

type Ensemble struct {
	numRuns   int
	seedStart int64
	workers   int
	metrics   MetricsFunc
	source    SourceFunc
}

func NewEnsemble(numRuns int, seedStart int64, metrics MetricsFunc) *Ensemble {
	return &Ensemble{
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
		metrics:   metrics,
		source:    defaultSource,
	}
}

func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

func (e *Ensemble) WithSource(f SourceFunc) *Ensemble {
	e.source = f
	return e
}

// Run executes numRuns independent runs with seeds seedStart, seedStart+1, ...
// Each run owns its sampler and source. The first error cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			r := New().WithSource(e.source)
			if e.metrics != nil {
				for _, m := range e.metrics(cfgCopy) {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, cfgCopy)
			results[idx] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge pools the counts, simulated time and retries of several runs. Events
// and metrics are not carried over.
func Merge(results []*Result) *Result {
	merged := &Result{Metrics: make(map[string]float64)}
	for _, r := range results {
		if r == nil {
			continue
		}
		if len(merged.Counts) < len(r.Counts) {
			grown := make([]int, len(r.Counts))
			copy(grown, merged.Counts)
			merged.Counts = grown
		}
		for k, c := range r.Counts {
			merged.Counts[k] += c
		}
		merged.Elapsed += r.Elapsed
		merged.Retries += r.Retries
		merged.Duration += r.Duration
	}
	return merged
}
