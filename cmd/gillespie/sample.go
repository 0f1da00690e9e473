package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/sampling"
	"github.com/san-kum/gillespie/internal/storage"
	"github.com/san-kum/gillespie/internal/viz"
)

const ksAlpha = 0.001

func runMetrics(cfg sampling.Config) []sampling.Metric {
	total := 0.0
	for _, p := range cfg.Propensities {
		total += p
	}
	return []sampling.Metric{
		metrics.NewMeanDt(),
		metrics.NewRate(),
		metrics.NewChiSquare(cfg.Propensities),
		metrics.NewKSExponential(total),
	}
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	scfg := sampling.Config{
		Sampler:      cfg.Sampler,
		Propensities: cfg.Propensities(),
		Samples:      cfg.Samples,
		Seed:         cfg.Seed,
		MaxRetries:   cfg.MaxRetries,
		KeepEvents:   keepEvents && cfg.Runs == 1,
	}

	logger.Info("sampling", "table", cfg.Name, "sampler", cfg.Sampler, "keys", len(scfg.Propensities),
		"samples", cfg.Samples, "runs", cfg.Runs, "seed", cfg.Seed)

	var result *sampling.Result
	if cfg.Runs == 1 {
		r := sampling.New()
		for _, m := range runMetrics(scfg) {
			r.AddMetric(m)
		}
		result, err = r.Run(cmd.Context(), scfg)
	} else {
		var results []*sampling.Result
		results, err = sampling.NewEnsemble(cfg.Runs, cfg.Seed, runMetrics).Run(cmd.Context(), scfg)
		if err == nil {
			result = sampling.Merge(results)
			result.Metrics = averageMetrics(results)
		}
	}
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	logger.Debug("sampling done", "events", result.Total(), "retries", result.Retries, "wall", result.Duration)
	if result.Retries > 0 {
		logger.Warn("ladder exhausted and redrawn", "retries", result.Retries)
	}

	meta := storage.Summarize(cfg, result)
	if err := printSummary(meta, result); err != nil {
		return err
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	logger.Info("saved run", "id", runID, "dir", dataDir)
	return nil
}

// averageMetrics takes the mean of each metric over the runs of an ensemble.
func averageMetrics(results []*sampling.Result) map[string]float64 {
	avg := make(map[string]float64)
	for _, r := range results {
		for k, v := range r.Metrics {
			avg[k] += v / float64(len(results))
		}
	}
	return avg
}

func printSummary(meta storage.RunMetadata, result *sampling.Result) error {
	n := result.Total()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tRATE\tEXPECTED\tOBSERVED\tCOUNT")
	for k, e := range meta.Events {
		observed := 0.0
		if n > 0 {
			observed = float64(e.Count) / float64(n)
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\t%.4f\t%.4f\t%d\n", k, e.Name, e.Rate, e.Expected, observed, e.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("events:          %d (retries %d)\n", n, meta.Retries)
	fmt.Printf("total rate:      %.6g\n", meta.Total)
	if result.Elapsed > 0 {
		fmt.Printf("observed rate:   %.6g\n", float64(n)/result.Elapsed)
	}
	if v, ok := meta.Metrics["mean_dt"]; ok {
		fmt.Printf("mean dt:         %.6g (expected %.6g)\n", v, 1/meta.Total)
	}
	fmt.Printf("chi2 p-value:    %.4f\n", meta.PValue)
	if d, ok := meta.Metrics["ks_dt"]; ok {
		verdict := "ok"
		if d >= metrics.KSCritical(meta.Samples, ksAlpha) {
			verdict = "REJECT"
		}
		fmt.Printf("ks distance dt:  %.5f (%s)\n", d, verdict)
	}
	fmt.Printf("wall time:       %.3fs\n", result.Duration)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(cfg, frameRate)
	if err != nil {
		return err
	}
	logger.Debug("starting live view", "table", cfg.Name, "sampler", cfg.Sampler)
	return viz.Run(m)
}
