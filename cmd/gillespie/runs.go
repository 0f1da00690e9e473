package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gillespie/internal/export"
	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/storage"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tTIME\tSAMPLER\tSAMPLES\tRUNS\tSEED\tRETRIES\tP-VALUE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.4f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Sampler,
			run.Samples,
			run.Runs,
			run.Seed,
			run.Retries,
			run.PValue,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("table: %s (%s, %d keys)\n", meta.Name, meta.Sampler, len(meta.Events))
	fmt.Printf("samples: %d x %d runs, seed %d\n\n", meta.Samples, meta.Runs, meta.Seed)

	if err := storage.ExportCSV(tabbed(os.Stdout), *meta); err != nil {
		return err
	}
	fmt.Println()

	events, _, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no event log recorded")
		return nil
	}
	if meta.Total <= 0 || bins <= 0 {
		return fmt.Errorf("cannot plot: total %g, bins %d", meta.Total, bins)
	}

	dts := make([]float64, len(events))
	for i, ev := range events {
		dts[i] = ev.Dt
	}

	// five mean waiting times cover all but e^-5 of the mass
	upper := 5 / meta.Total
	observed := metrics.Density(dts, bins, upper)
	expected := metrics.ExponentialDensity(meta.Total, bins, upper)
	graph := asciigraph.PlotMany(
		[][]float64{observed, expected},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("dt density (green) vs Exp(%.4g) (red)", meta.Total)),
	)
	fmt.Println(graph)

	if svgFile != "" {
		svg := export.ChartSVG([]export.Series{
			{Values: observed, Color: "#00ff88"},
			{Values: expected, Color: "#ff4444"},
		}, upper, 800, 400, fmt.Sprintf("%s: dt density vs Exp(%.4g)", meta.ID, meta.Total))
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote plot", "file", svgFile)
	}

	d := metrics.KSExponentialStatistic(dts, meta.Total)
	fmt.Printf("\nks distance: %.5f (critical %.5f at %.3f)\n", d, metrics.KSCritical(len(dts), ksAlpha), ksAlpha)
	return nil
}

// tabbed routes CSV output through a tabwriter for terminal display.
func tabbed(w io.Writer) io.Writer {
	return &tabCSV{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

type tabCSV struct {
	tw *tabwriter.Writer
}

func (t *tabCSV) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	for i, b := range p {
		if b == ',' {
			b = '\t'
		}
		out[i] = b
	}
	if _, err := t.tw.Write(out); err != nil {
		return 0, err
	}
	return len(p), t.tw.Flush()
}

func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	events, times, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := storage.ExportJSON(w, storage.NewExportData(*meta, events, times)); err != nil {
		return err
	}
	if outFile != "" {
		logger.Info("exported", "run", runID, "file", outFile)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := storage.ExportCSV(w, *meta); err != nil {
		return err
	}
	if outFile != "" {
		logger.Info("exported", "run", runID, "file", outFile)
	}
	return nil
}
