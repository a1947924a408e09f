package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/chartpipe/internal/config"
	"codeberg.org/mutker/chartpipe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chartpipe.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interval = 200
points = 30
frame_interval = 20
charts = 3
strict_locking = true
source = "gpu"
display = "terminal"
log_level = "debug"
metrics = true
metrics_db = "/path/to/metrics.db"
`)
	t.Setenv("CHARTPIPE_CONFIG", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Interval, "Expected Interval 200")
	assert.Equal(t, 30, cfg.Points, "Expected Points 30")
	assert.Equal(t, 20, cfg.FrameInterval, "Expected FrameInterval 20")
	assert.Equal(t, 3, cfg.Charts, "Expected Charts 3")
	assert.True(t, cfg.StrictLocking, "Expected StrictLocking true")
	assert.Equal(t, config.SourceGPU, cfg.Source)
	assert.Equal(t, config.DisplayTerminal, cfg.Display)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "/path/to/metrics.db", cfg.MetricsDB)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultPoints, cfg.Points)
	assert.Equal(t, config.DefaultFrameInterval, cfg.FrameInterval)
	assert.Equal(t, config.DefaultFrameInterval, cfg.RefreshInterval)
	assert.Equal(t, config.DefaultCharts, cfg.Charts)
	assert.False(t, cfg.StrictLocking)
	assert.Equal(t, config.SourceRandom, cfg.Source)
	assert.Equal(t, config.DisplayHeadless, cfg.Display)
	assert.InDelta(t, config.DefaultStrokeWidth, cfg.StrokeWidth, 1e-9)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, "100ms", cfg.SampleInterval().String())
	assert.Equal(t, "16ms", cfg.RefreshPeriod().String())
	assert.Equal(t, "5s", cfg.MetricsPeriod().String())
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	path := writeConfig(t, "interval = 200\npoints = 30\n")
	t.Setenv("CHARTPIPE_CONFIG", path)
	t.Setenv("CHARTPIPE_POINTS", "40")

	cfg, err := config.Load([]string{"--interval", "50", "--strict-locking", "--log-level", "warning"})
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Interval, "flag wins over file")
	assert.Equal(t, 40, cfg.Points, "env wins over file")
	assert.True(t, cfg.StrictLocking)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestConfigFlagAndOption(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", "")
	fromFlag := writeConfig(t, "charts = 4\n")
	fromOption := writeConfig(t, "charts = 5\n")

	cfg, err := config.Load([]string{"--config", fromFlag}, config.WithConfigFile(fromOption))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Charts)

	cfg, err = config.Load(nil, config.WithConfigFile(fromOption))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Charts)
}

func TestEnvPrefixOption(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", "")
	t.Setenv("GRAPH_CONFIG", "")
	t.Setenv("GRAPH_CHARTS", "6")

	cfg, err := config.Load(nil, config.WithEnvPrefix("GRAPH"))
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Charts)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, "\nThis is not a valid TOML file\n")
	t.Setenv("CHARTPIPE_CONFIG", path)

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestMissingExplicitConfigFile(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", writeConfig(t, `log_level = "invalid"`))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	t.Setenv("CHARTPIPE_CONFIG", "")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"zero interval", []string{"--interval", "0"}, errors.ErrInvalidInterval},
		{"negative frame interval", []string{"--frame-interval", "-1"}, errors.ErrInvalidInterval},
		{"single point", []string{"--points", "1"}, errors.ErrInvalidConfig},
		{"no charts", []string{"--charts", "0"}, errors.ErrInvalidConfig},
		{"unknown source", []string{"--source", "sine"}, errors.ErrInvalidConfig},
		{"unknown display", []string{"--display", "x11"}, errors.ErrInvalidConfig},
		{"zero width", []string{"--width", "0"}, errors.ErrInvalidConfig},
		{"zero stroke", []string{"--stroke-width", "0"}, errors.ErrInvalidConfig},
		{"metrics without db", []string{"--metrics", "--metrics-db", ""}, errors.ErrInvalidConfig},
		{"unknown flag", []string{"--bogus"}, errors.ErrBindFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
