package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/anombench/internal/config"
	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/experiment"
	"github.com/san-kum/anombench/internal/optim"
	"github.com/san-kum/anombench/internal/report"
	"github.com/san-kum/anombench/internal/storage"
	"github.com/san-kum/anombench/internal/tui"
)

var (
	dataDir    string
	outDir     string
	configFile string
	preset     string
	seed       int64
	workers    int
	noCache    bool
	progress   bool
	verbose    bool
	// tune
	trees       []int
	depths      []int
	maxFeatures []int
)

// main exits with status 1 when the executed command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "anombench",
		Short:        "random forest benchmark for anomalous diffusion",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runBench,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration (mode/name)")
	pf.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	pf.IntVar(&workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "trajectory cache directory")
	pf.BoolVar(&noCache, "no-cache", false, "always generate trajectories")
	pf.BoolVar(&progress, "progress", false, "show generation progress")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "generate, train and evaluate",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&outDir, "out", config.DefaultOutputDir, "output directory")
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search over forest hyperparameters",
		Args:  cobra.NoArgs,
		RunE:  tuneForest,
	}
	tuneCmd.Flags().IntSliceVar(&trees, "trees", []int{50, 100, 200}, "n_estimators values")
	tuneCmd.Flags().IntSliceVar(&depths, "depths", []int{0, 8, 16}, "max_depth values (0 = unlimited)")
	tuneCmd.Flags().IntSliceVar(&maxFeatures, "max-features", []int{0}, "max_features values (0 = default)")

	presetsCmd := &cobra.Command{
		Use:   "presets [mode]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) > 0 {
				mode = args[0]
			}
			presets := config.ListPresets(mode)
			if len(presets) == 0 {
				fmt.Printf("no presets for mode: %s\n", mode)
				return nil
			}
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "list cached trajectory buckets",
		Args:  cobra.NoArgs,
		RunE:  listCache,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list diffusion models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range experiment.NewRegistry().ListModels() {
				fmt.Printf("  %s\n", m)
			}
		},
	}

	rootCmd.AddCommand(runCmd, tuneCmd, presetsCmd, cacheCmd, modelsCmd)
	return rootCmd
}

// loadConfig applies the preset, then the config file, then explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.ParsePreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(""), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	level := zapcore.InfoLevel
	switch {
	case progress:
		level = zapcore.WarnLevel
	case verbose:
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	return zc.Build()
}

func experimentOptions(cfg *config.Config, logger *zap.Logger) ([]experiment.Option, error) {
	opts := []experiment.Option{experiment.WithLogger(logger)}
	if noCache {
		return opts, nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return append(opts, experiment.WithCache(st)), nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := experimentOptions(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var out *experiment.Outcome
	if progress {
		err = tui.Track(ctx, "generating trajectories", func(ctx context.Context, obs dataset.Observer) error {
			var err error
			out, err = experiment.New(cfg, append(opts, experiment.WithObserver(obs))...).Run(ctx)
			return err
		})
	} else {
		out, err = experiment.New(cfg, opts...).Run(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println(report.Summary(out))

	paths, err := report.Write(out)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func tuneForest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := experimentOptions(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ds, err := experiment.New(cfg, opts...).Build(ctx)
	if err != nil {
		return err
	}

	names := []string{optim.ParamTrees, optim.ParamDepth, optim.ParamMaxFeatures}
	ranges := [][]float64{toFloats(trees), toFloats(depths), toFloats(maxFeatures)}
	g := optim.NewGridSearch(names, ranges).WithLogger(logger)

	best, score, trials, err := g.Search(ctx, optim.ForestObjective(ds, cfg.ForestConfig(), cfg.Alphas))
	if err != nil {
		return err
	}

	scoreName := "mse"
	if ds.Mode.Categorical() {
		scoreName = "1-accuracy"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TREES\tDEPTH\tMAX_FEATURES\t%s\tTIME\n", strings.ToUpper(scoreName))
	for _, t := range trials {
		fmt.Fprintf(w, "%.0f\t%.0f\t%.0f\t%.6f\t%s\n",
			t.Params[optim.ParamTrees],
			t.Params[optim.ParamDepth],
			t.Params[optim.ParamMaxFeatures],
			t.Score,
			t.Elapsed.Round(time.Millisecond),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: trees=%.0f depth=%.0f max_features=%.0f %s=%.6f\n",
		best[optim.ParamTrees], best[optim.ParamDepth], best[optim.ParamMaxFeatures], scoreName, score)
	return nil
}

func toFloats(vs []int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

func listCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	buckets, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(buckets) == 0 {
		fmt.Fprintf(out, "no cached buckets found in %s\n", cfg.DataDir)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tMODEL\tALPHA\tT_MAX\tCOUNT\tSEED\tTIME")

	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			b.Key,
			b.Process,
			dataset.FormatLabel(b.Alpha),
			b.TMax,
			b.Count,
			b.Seed,
			b.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}
