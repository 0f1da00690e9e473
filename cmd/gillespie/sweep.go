package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gillespie/internal/automation"
)

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.RateSweep{
		Key:     sweepKey,
		Min:     sweepMin,
		Max:     sweepMax,
		Steps:   sweepSteps,
		Samples: samples,
		Seed:    seed,
	}

	if sweepFile != "" {
		loaded, err := automation.LoadSweep(sweepFile)
		if err != nil {
			return fmt.Errorf("failed to load sweep: %w", err)
		}
		sweep = loaded
		if len(args) == 0 && sweep.Preset != "" {
			args = []string{sweep.Preset}
		}
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names := cfg.EventNames()
	if sweep.Key >= 0 && sweep.Key < len(names) {
		logger.Info("sweeping", "table", cfg.Name, "event", names[sweep.Key], "min", sweep.Min, "max", sweep.Max, "steps", sweep.Steps)
	}

	points, err := sweep.Run(cmd.Context(), cfg, func(i int, p automation.SweepPoint) {
		logger.Debug("sweep step", "step", i+1, "rate", p.Rate, "p", p.PValue)
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RATE\tTOTAL\tEXPECTED\tOBSERVED\tMEAN DT\tP-VALUE\tRETRIES")
	shares := make([]float64, len(points))
	for i, p := range points {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4f\t%.4f\t%.5f\t%.4f\t%d\n",
			p.Rate, p.Total, p.Expected, p.Observed, p.MeanDt, p.PValue, p.Retries)
		shares[i] = p.Observed
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(shares,
		asciigraph.Height(8),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption("observed share of the swept event"),
	))
	return nil
}
