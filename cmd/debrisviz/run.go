package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NielsBongers/rust-orbital-debris/internal/aggregate"
	"github.com/NielsBongers/rust-orbital-debris/internal/colormap"
	"github.com/NielsBongers/rust-orbital-debris/internal/config"
	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/metrics"
	"github.com/NielsBongers/rust-orbital-debris/internal/render"
	"github.com/NielsBongers/rust-orbital-debris/internal/series"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

// cliOptions holds flag values; only flags the user set override the
// file and environment layers.
type cliOptions struct {
	configPath string
	cfg        config.Config
	entities   string
}

func (o *cliOptions) bind(cmd *cobra.Command) {
	o.cfg = config.Default()
	f := cmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&o.cfg.DataDir, "data-dir", "d", o.cfg.DataDir, "Directory of per-entity data files")
	f.StringVarP(&o.cfg.OutputPath, "output", "o", o.cfg.OutputPath, "Plot output path (.png or .svg)")
	f.Float64Var(&o.cfg.WindowStart, "start", o.cfg.WindowStart, "Window start time (s)")
	f.Float64Var(&o.cfg.WindowEnd, "end", o.cfg.WindowEnd, "Window end time (s)")
	f.Float64Var(&o.cfg.Period, "period", o.cfg.Period, "Sampling period (s); only exact multiples are kept")
	f.BoolVar(&o.cfg.AllSamples, "all-samples", o.cfg.AllSamples, "Plot every sample and ignore the time window")
	f.StringVar(&o.entities, "entities", "", "Comma-separated entity names to plot")
	f.StringVar(&o.cfg.LegendMode, "legend-mode", o.cfg.LegendMode, "Legend labels: first (first entity) or union")
	f.StringVar(&o.cfg.ColorScale, "color-scale", o.cfg.ColorScale, "Time color scale: jet or viridis")
	f.IntVarP(&o.cfg.Workers, "workers", "w", o.cfg.Workers, "Concurrent source reads")
	f.StringVar(&o.cfg.Title, "title", o.cfg.Title, "Plot title")
	f.IntVar(&o.cfg.Width, "width", o.cfg.Width, "Image width (px)")
	f.IntVar(&o.cfg.Height, "height", o.cfg.Height, "Image height (px)")
	f.BoolVar(&o.cfg.Caption, "caption", o.cfg.Caption, "Stamp the window description under PNG plots")
	f.BoolVar(&o.cfg.NoLegend, "no-legend", o.cfg.NoLegend, "Omit the time legend")
	f.StringVar(&o.cfg.MetricsFile, "metrics-file", o.cfg.MetricsFile, "Write run metrics in Prometheus textfile format")
	f.StringVar(&o.cfg.LogLevel, "log-level", o.cfg.LogLevel, "Log level: debug, info, warn, error")
}

// resolve layers defaults, config file, environment and changed flags.
func (o *cliOptions) resolve(cmd *cobra.Command, bootLogger *slog.Logger) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadFile(cfg, o.configPath)
		if err != nil {
			return cfg, err
		}
	}
	cfg = config.ApplyEnv(cfg, os.LookupEnv, bootLogger)

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("data-dir", func() { cfg.DataDir = o.cfg.DataDir })
	set("output", func() { cfg.OutputPath = o.cfg.OutputPath })
	set("start", func() { cfg.WindowStart = o.cfg.WindowStart })
	set("end", func() { cfg.WindowEnd = o.cfg.WindowEnd })
	set("period", func() { cfg.Period = o.cfg.Period })
	set("all-samples", func() { cfg.AllSamples = o.cfg.AllSamples })
	set("entities", func() { cfg.SelectedEntities = config.SplitList(o.entities) })
	set("legend-mode", func() { cfg.LegendMode = o.cfg.LegendMode })
	set("color-scale", func() { cfg.ColorScale = o.cfg.ColorScale })
	set("workers", func() { cfg.Workers = o.cfg.Workers })
	set("title", func() { cfg.Title = o.cfg.Title })
	set("width", func() { cfg.Width = o.cfg.Width })
	set("height", func() { cfg.Height = o.cfg.Height })
	set("caption", func() { cfg.Caption = o.cfg.Caption })
	set("no-legend", func() { cfg.NoLegend = o.cfg.NoLegend })
	set("metrics-file", func() { cfg.MetricsFile = o.cfg.MetricsFile })
	set("log-level", func() { cfg.LogLevel = o.cfg.LogLevel })

	return cfg, cfg.Validate()
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setup resolves configuration and builds the logger and aggregator.
func setup(cmd *cobra.Command, opts *cliOptions, entities []string) (config.Config, *slog.Logger, *aggregate.Aggregator, error) {
	cfg, err := opts.resolve(cmd, newLogger(slog.LevelWarn))
	if len(entities) > 0 {
		cfg.SelectedEntities = entities
	}
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := newLogger(level)
	logger.Info("configuration", "config", cfg)

	mode, _ := legend.ParseMode(cfg.LegendMode)
	scale, _ := colormap.ByName(cfg.ColorScale)

	agg := aggregate.New(
		series.NewDirCatalog(cfg.DataDir, logger),
		aggregate.Options{
			Workers:          cfg.Workers,
			LegendMode:       mode,
			SelectedEntities: cfg.SelectedEntities,
			Scale:            scale,
			AllSamples:       cfg.AllSamples,
		},
		logger,
	)
	return cfg, logger, agg, nil
}

func runPlot(cmd *cobra.Command, opts *cliOptions, entities []string, path bool) error {
	cfg, logger, agg, err := setup(cmd, opts, entities)
	if err != nil {
		return err
	}
	if path && len(cfg.SelectedEntities) == 0 {
		return errors.New("path mode needs at least one entity (arguments or --entities)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch, err := agg.Aggregate(ctx, cfg.Window())
	if err != nil {
		return fmt.Errorf("aggregating series: %w", err)
	}
	for _, w := range batch.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %s\n", w)
	}

	ropts := render.DefaultOptions()
	ropts.Title = cfg.Title
	ropts.Width = cfg.Width
	ropts.Height = cfg.Height
	ropts.Caption = cfg.Caption
	ropts.ShowLegend = !cfg.NoLegend
	if path {
		ropts.Mode = render.Path
		ropts.ShowLegend = false
	}

	if err := render.New(ropts, logger).Render(batch, cfg.OutputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d entities, %d points)\n", cfg.OutputPath, len(batch.Groups), batch.PointCount())

	return writeMetrics(cfg, logger)
}

func runInspect(cmd *cobra.Command, opts *cliOptions) error {
	cfg, logger, _, err := setup(cmd, opts, nil)
	if err != nil {
		return err
	}

	srcs, err := series.NewDirCatalog(cfg.DataDir, logger).Sources(cmd.Context())
	if err != nil {
		return err
	}

	w := cfg.Window()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tFORMAT\tSAMPLES\tT MIN\tT MAX\tSELECTED")
	for _, src := range srcs {
		s, err := series.Load(src)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\terror: %v\t\t\t\n", src.Name, src.Format, err)
			continue
		}
		selected := s
		if !cfg.AllSamples {
			selected, _ = window.Select(s, w)
		}
		rng, ok := s.Range()
		if !ok {
			fmt.Fprintf(tw, "%s\t%s\t0\t-\t-\t0\n", src.Name, src.Format)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%g\t%d\n", src.Name, src.Format, s.Len(), rng.Min, rng.Max, selected.Len())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writeMetrics(cfg, logger)
}

func writeMetrics(cfg config.Config, logger *slog.Logger) error {
	if cfg.MetricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		return err
	}
	logger.Debug("metrics written", "path", cfg.MetricsFile)
	return nil
}
