package sampling

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/ssa"
)

func TestEnsembleRun(t *testing.T) {
	cfg := Config{
		Sampler:      ssa.KindIndexed,
		Propensities: []float64{1, 0, 3},
		Samples:      1000,
	}

	e := NewEnsemble(4, 100, func(cfg Config) []Metric {
		return []Metric{metrics.NewChiSquare(cfg.Propensities)}
	}).WithWorkers(2)

	results, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Seed != 100+int64(i) {
			t.Errorf("run %d: expected seed %d, got %d", i, 100+i, r.Seed)
		}
		if _, ok := r.Metrics["chi2"]; !ok {
			t.Errorf("run %d: missing chi2 metric", i)
		}
		if r.Counts[1] != 0 {
			t.Errorf("run %d: zero-propensity key was selected", i)
		}
	}

	merged := Merge(results)
	if merged.Total() != 4000 {
		t.Errorf("expected 4000 merged events, got %d", merged.Total())
	}
}

func TestEnsembleError(t *testing.T) {
	e := NewEnsemble(3, 0, nil)
	_, err := e.Run(context.Background(), Config{Propensities: []float64{0}, Samples: 5})
	if !errors.Is(err, ssa.ErrNoPropensity) {
		t.Errorf("expected ErrNoPropensity, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	merged := Merge([]*Result{
		{Counts: []int{1, 2}, Elapsed: 1.5, Retries: 1},
		nil,
		{Counts: []int{3, 4, 5}, Elapsed: 0.5},
	})

	want := []int{4, 6, 5}
	for k, c := range want {
		if merged.Counts[k] != c {
			t.Errorf("key %d: expected %d, got %d", k, c, merged.Counts[k])
		}
	}
	if merged.Elapsed != 2.0 {
		t.Errorf("expected elapsed 2.0, got %f", merged.Elapsed)
	}
	if merged.Retries != 1 {
		t.Errorf("expected 1 retry, got %d", merged.Retries)
	}
}
