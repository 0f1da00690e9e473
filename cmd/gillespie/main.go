package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/gillespie/internal/config"
	"github.com/san-kum/gillespie/internal/logging"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// sampling
	configFile string
	samplerArg string
	samples    int
	seed       int64
	runs       int
	rates      []float64
	keepEvents bool
	noSave     bool

	// show / export
	bins    int
	outFile string
	svgFile string

	// sweep
	sweepFile  string
	sweepKey   int
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	// bench
	sizes       []int
	benchDraws  int
	benchSample string

	// live
	frameRate int
)

// main registers the gillespie commands and executes the root command,
// exiting with status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gillespie",
		Short:         "direct-method SSA sampler lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = settings.DataDir
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = settings.LogLevel
			}
			logger = logging.New(logLevel, os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gillespie", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	sampleCmd := &cobra.Command{
		Use:   "sample [preset]",
		Short: "draw events from a propensity table and check them against theory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSample,
	}
	addTableFlags(sampleCmd)
	sampleCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed (first run)")
	sampleCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "events per run")
	sampleCmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "independent runs (parallel)")
	sampleCmd.Flags().BoolVar(&keepEvents, "events", true, "record the event log (single run only)")
	sampleCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show key frequencies and the waiting-time histogram of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")
	showCmd.Flags().StringVar(&svgFile, "svg", "", "also write the density plot as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with its event log as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-key frequencies of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare sampler kinds over key-space sizes",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&sizes, "sizes", []int{8, 64, 512, 4096}, "key-space sizes")
	benchCmd.Flags().IntVar(&benchDraws, "draws", 200000, "draws and updates per measurement")
	benchCmd.Flags().StringVar(&benchSample, "sampler", "", "only bench this sampler kind")
	benchCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "sample continuously with a live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addTableFlags(liveCmd)
	liveCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "step one event's rate across a range and check the sampler at each point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addTableFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "sweep definition (yaml)")
	sweepCmd.Flags().IntVar(&sweepKey, "key", 0, "event key to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first rate")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 4, "last rate")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of rates")
	sweepCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "events per rate")
	sweepCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	rootCmd.AddCommand(sampleCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, benchCmd, presetsCmd, liveCmd, sweepCmd)
	return rootCmd
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&samplerArg, "sampler", "", "sampler kind (direct, indexed)")
	cmd.Flags().Float64SliceVar(&rates, "rates", nil, "propensities, e.g. --rates 1,0,3")
}

// resolveConfig layers preset or config file, then environment overrides,
// then explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("sampler") {
		cfg.Sampler = samplerArg
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("runs") {
		cfg.Runs = runs
	}
	if flags.Changed("rates") {
		cfg.Name = "custom"
		cfg.Events = make([]config.EventConfig, len(rates))
		for i, r := range rates {
			cfg.Events[i] = config.EventConfig{Name: fmt.Sprintf("k%d", i), Rate: r}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-12s %-8s %4d events  %d samples x %d runs\n", name, p.Sampler, len(p.Events), p.Samples, p.Runs)
	}
	return nil
}
