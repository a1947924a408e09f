package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix      = "CHARTPIPE"
	DefaultConfigName     = "chartpipe"
	DefaultInterval       = 100
	DefaultPoints         = 50
	DefaultFrameInterval  = 16
	DefaultCharts         = 2
	DefaultWidth          = 480
	DefaultHeight         = 320
	DefaultStrokeWidth    = 6.0
	DefaultSnapshotEvery  = 60
	DefaultLogLevel       = "info"
	DefaultMetricsDB      = "chartpipe-metrics.db"
	DefaultMetricsPeriod  = 5
	DefaultMetricsBatch   = 12
	DefaultMetricsTimeout = 30
)

type Config struct {
	Interval            int     `mapstructure:"interval"`
	Points              int     `mapstructure:"points"`
	FrameInterval       int     `mapstructure:"frame_interval"`
	RefreshInterval     int     `mapstructure:"refresh_interval"`
	Charts              int     `mapstructure:"charts"`
	StrictLocking       bool    `mapstructure:"strict_locking"`
	Source              Source  `mapstructure:"source"`
	Display             Display `mapstructure:"display"`
	Width               int     `mapstructure:"width"`
	Height              int     `mapstructure:"height"`
	StrokeWidth         float64 `mapstructure:"stroke_width"`
	SnapshotDir         string  `mapstructure:"snapshot_dir"`
	SnapshotEvery       int     `mapstructure:"snapshot_every"`
	LogLevel            string  `mapstructure:"log_level"`
	LogFile             string  `mapstructure:"log_file"`
	Metrics             bool    `mapstructure:"metrics"`
	MetricsDB           string  `mapstructure:"metrics_db"`
	MetricsInterval     int     `mapstructure:"metrics_interval"`
	MetricsBatchSize    int     `mapstructure:"metrics_batch_size"`
	MetricsBatchTimeout int     `mapstructure:"metrics_batch_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("points", DefaultPoints)
	v.SetDefault("frame_interval", DefaultFrameInterval)
	v.SetDefault("refresh_interval", DefaultFrameInterval)
	v.SetDefault("charts", DefaultCharts)
	v.SetDefault("strict_locking", false)
	v.SetDefault("source", string(SourceRandom))
	v.SetDefault("display", string(DisplayHeadless))
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("height", DefaultHeight)
	v.SetDefault("stroke_width", DefaultStrokeWidth)
	v.SetDefault("snapshot_dir", "")
	v.SetDefault("snapshot_every", DefaultSnapshotEvery)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_db", DefaultMetricsDB)
	v.SetDefault("metrics_interval", DefaultMetricsPeriod)
	v.SetDefault("metrics_batch_size", DefaultMetricsBatch)
	v.SetDefault("metrics_batch_timeout", DefaultMetricsTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("chartpipe", pflag.ContinueOnError)

	fs.String("config", "", "Path to a TOML configuration file")
	fs.Int("interval", DefaultInterval, "Milliseconds between produced samples")
	fs.Int("points", DefaultPoints, "Number of points per series")
	fs.Int("frame-interval", DefaultFrameInterval, "Milliseconds between animation frames")
	fs.Int("refresh-interval", DefaultFrameInterval, "Milliseconds between display refreshes")
	fs.Int("charts", DefaultCharts, "Number of chart surfaces sharing the series")
	fs.Bool("strict-locking", false, "Read the shared series under the producer lock")
	fs.String("source", string(SourceRandom), "Sample source: random or gpu")
	fs.String("display", string(DisplayHeadless), "Display host: headless or terminal")
	fs.Int("width", DefaultWidth, "Headless chart width in pixels")
	fs.Int("height", DefaultHeight, "Headless chart height in pixels")
	fs.Float64("stroke-width", DefaultStrokeWidth, "Line stroke width in pixels")
	fs.String("snapshot-dir", "", "Directory for headless PNG snapshots")
	fs.Int("snapshot-every", DefaultSnapshotEvery, "Painted frames between headless snapshots")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	fs.String("log-file", "", "Write logs to this file instead of stdout")
	fs.Bool("metrics", false, "Record pipeline statistics to sqlite")
	fs.String("metrics-db", DefaultMetricsDB, "Path to the metrics database")
	fs.Int("metrics-interval", DefaultMetricsPeriod, "Seconds between metrics snapshots")

	return fs
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Load reads defaults, the config file, the environment and args, in
// increasing order of precedence.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := o.configPath
	if f := fs.Lookup("config"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Override config file values with command line flags
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		v.Set(flagKey(f.Name), f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants every component relies on at setup
func (c *Config) Validate() error {
	errFactory := errors.New()

	for name, ms := range map[string]int{
		"interval":         c.Interval,
		"frame_interval":   c.FrameInterval,
		"refresh_interval": c.RefreshInterval,
	} {
		if ms <= 0 {
			return errFactory.WithData(errors.ErrInvalidInterval, struct {
				Field string
				Value int
			}{name, ms})
		}
	}

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	switch {
	case c.Points < 2:
		return invalid("points", c.Points)
	case c.Charts < 1:
		return invalid("charts", c.Charts)
	case c.Source != SourceRandom && c.Source != SourceGPU:
		return invalid("source", c.Source)
	case c.Display != DisplayHeadless && c.Display != DisplayTerminal:
		return invalid("display", c.Display)
	case c.Width <= 0 || c.Height <= 0:
		return invalid("size", [2]int{c.Width, c.Height})
	case c.StrokeWidth <= 0:
		return invalid("stroke_width", c.StrokeWidth)
	case c.SnapshotEvery <= 0:
		return invalid("snapshot_every", c.SnapshotEvery)
	case c.Metrics && c.MetricsDB == "":
		return invalid("metrics_db", c.MetricsDB)
	case c.Metrics && c.MetricsInterval <= 0:
		return invalid("metrics_interval", c.MetricsInterval)
	}

	return nil
}

func invalid(field string, value any) error {
	return errors.New().WithData(errors.ErrInvalidConfig, struct {
		Field string
		Value any
	}{field, value})
}

// SampleInterval returns the producer period
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// RefreshPeriod returns the display refresh period
func (c *Config) RefreshPeriod() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// MetricsPeriod returns the time between metrics snapshots
func (c *Config) MetricsPeriod() time.Duration {
	return time.Duration(c.MetricsInterval) * time.Second
}
