// Package config holds the settings of a visualization run.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// DEBRISVIZ_* environment variables, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NielsBongers/rust-orbital-debris/internal/colormap"
	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DEBRISVIZ_"

// Config is the full set of run options.
type Config struct {
	DataDir          string   `yaml:"data_dir"`
	OutputPath       string   `yaml:"output_path"`
	WindowStart      float64  `yaml:"window_start"`
	WindowEnd        float64  `yaml:"window_end"`
	Period           float64  `yaml:"period"`
	AllSamples       bool     `yaml:"all_samples"`
	SelectedEntities []string `yaml:"selected_entities"`
	LegendMode       string   `yaml:"legend_mode"`
	ColorScale       string   `yaml:"color_scale"`
	Workers          int      `yaml:"workers"`
	Title            string   `yaml:"title"`
	Width            int      `yaml:"width"`
	Height           int      `yaml:"height"`
	Caption          bool     `yaml:"caption"`
	NoLegend         bool     `yaml:"no_legend"`
	MetricsFile      string   `yaml:"metrics_file"`
	LogLevel         string   `yaml:"log_level"`
}

// Default returns the standard debris figure settings.
func Default() Config {
	return Config{
		DataDir:     "results/data",
		OutputPath:  "results/figures/simulation_results.png",
		WindowStart: 0,
		WindowEnd:   5000,
		Period:      500,
		LegendMode:  legend.FirstEntity.String(),
		ColorScale:  colormap.Jet.Name(),
		Workers:     runtime.NumCPU(),
		Title:       "Orbital debris",
		Width:       1200,
		Height:      1200,
		LogLevel:    "info",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays DEBRISVIZ_* variables found through lookup onto cfg.
// Unparsable values are logged and ignored.
func ApplyEnv(cfg Config, lookup func(string) (string, bool), logger *slog.Logger) Config {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			logger.Warn("invalid "+EnvPrefix+key+" value, keeping current", "value", v, "current", *dst)
			return
		}
		*dst = n
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			logger.Warn("invalid "+EnvPrefix+key+" value, keeping current", "value", v, "current", *dst)
			return
		}
		*dst = n
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid "+EnvPrefix+key+" value, keeping current", "value", v, "current", *dst)
			return
		}
		*dst = b
	}

	str("DATA_DIR", &cfg.DataDir)
	str("OUTPUT_PATH", &cfg.OutputPath)
	float("WINDOW_START", &cfg.WindowStart)
	float("WINDOW_END", &cfg.WindowEnd)
	float("PERIOD", &cfg.Period)
	boolean("ALL_SAMPLES", &cfg.AllSamples)
	str("LEGEND_MODE", &cfg.LegendMode)
	str("COLOR_SCALE", &cfg.ColorScale)
	integer("WORKERS", &cfg.Workers)
	str("TITLE", &cfg.Title)
	integer("WIDTH", &cfg.Width)
	integer("HEIGHT", &cfg.Height)
	boolean("CAPTION", &cfg.Caption)
	boolean("NO_LEGEND", &cfg.NoLegend)
	str("METRICS_FILE", &cfg.MetricsFile)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup(EnvPrefix + "SELECTED_ENTITIES"); ok && v != "" {
		cfg.SelectedEntities = SplitList(v)
	}

	return cfg
}

// SplitList splits a comma-separated list, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Window returns the configured time window.
func (c Config) Window() window.Window {
	return window.Window{Start: c.WindowStart, End: c.WindowEnd, Period: c.Period}
}

// Validate reports every configuration error at once, so a run aborts
// before any data is read or drawn. The window is not checked when
// AllSamples is set.
func (c Config) Validate() error {
	var errs []error
	if !c.AllSamples {
		if err := c.Window().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := legend.ParseMode(c.LegendMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := colormap.ByName(c.ColorScale); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output_path is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Width < 1 || c.Height < 1 {
		errs = append(errs, fmt.Errorf("image size %dx%d must be positive", c.Width, c.Height))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// LogValue keeps config logging compact and structured.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("data_dir", c.DataDir),
		slog.String("output_path", c.OutputPath),
		slog.String("window", c.Window().String()),
		slog.Bool("all_samples", c.AllSamples),
		slog.Any("selected_entities", c.SelectedEntities),
		slog.String("legend_mode", c.LegendMode),
		slog.String("color_scale", c.ColorScale),
		slog.Int("workers", c.Workers),
	)
}
