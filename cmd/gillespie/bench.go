package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gillespie/internal/ssa"
)

type benchResult struct {
	kind     string
	size     int
	nextNs   float64
	updateNs float64
	retries  int
}

func runBench(cmd *cobra.Command, args []string) error {
	kinds := ssa.Kinds()
	if benchSample != "" {
		if _, err := ssa.New(benchSample, 0); err != nil {
			return err
		}
		kinds = []string{benchSample}
	}
	if benchDraws <= 0 {
		return fmt.Errorf("draws must be positive, got %d", benchDraws)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLER\tKEYS\tNEXT (ns/op)\tUPDATE (ns/op)\tRETRIES")

	for _, n := range sizes {
		if n <= 0 {
			continue
		}
		for _, kind := range kinds {
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			res, err := benchSampler(kind, n, benchDraws, seed)
			if err != nil {
				return fmt.Errorf("%s/%d: %w", kind, n, err)
			}
			logger.Debug("bench", "sampler", kind, "keys", n, "next_ns", res.nextNs, "update_ns", res.updateNs)
			fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%d\n", res.kind, res.size, res.nextNs, res.updateNs, res.retries)
		}
	}

	return w.Flush()
}

func benchSampler(kind string, n, draws int, seed int64) (benchResult, error) {
	s, err := ssa.New(kind, n)
	if err != nil {
		return benchResult{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	for k := 0; k < n; k++ {
		if err := s.Update(k, rng.Float64()); err != nil {
			return benchResult{}, err
		}
	}

	res := benchResult{kind: kind, size: n}

	start := time.Now()
	for i := 0; i < draws; i++ {
		_, err := s.Next(rng)
		if errors.Is(err, ssa.ErrLadderExhausted) {
			res.retries++
			continue
		}
		if err != nil {
			return res, err
		}
	}
	res.nextNs = float64(time.Since(start).Nanoseconds()) / float64(draws)

	keys := make([]int, draws)
	vals := make([]float64, draws)
	for i := range keys {
		keys[i] = rng.Intn(n)
		vals[i] = rng.Float64()
	}

	start = time.Now()
	for i := 0; i < draws; i++ {
		if err := s.Update(keys[i], vals[i]); err != nil {
			return res, err
		}
	}
	res.updateNs = float64(time.Since(start).Nanoseconds()) / float64(draws)

	return res, nil
}
