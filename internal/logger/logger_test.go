package logger_test

import (
	"bytes"
	"testing"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want logger.LogLevel
	}{
		{"debug", logger.DebugLevel},
		{"INFO", logger.InfoLevel},
		{"", logger.InfoLevel},
		{"warning", logger.WarnLevel},
		{"warn", logger.WarnLevel},
		{"error", logger.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := logger.ParseLevel("loud")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestComponentTagsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.DebugLevel, &buf, true)

	logger.With("producer").Str("chart", "1").Info().Int("appends", 3).Msg("tick")

	out := buf.String()
	assert.Contains(t, out, "tick")
	assert.Contains(t, out, "component=producer")
	assert.Contains(t, out, "chart=1")
	assert.Contains(t, out, "appends=3")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.WarnLevel, &buf, true)
	t.Cleanup(func() { logger.SetLogLevel(logger.InfoLevel) })

	logger.Debug().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, logger.Enabled(logger.InfoLevel))
	assert.True(t, logger.Enabled(logger.ErrorLevel))
}

func TestErrorWithCode(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.InfoLevel, &buf, true)

	err := errors.New().New(errors.ErrInitMetrics)
	logger.ErrorWithCode(err).Msg("metrics")

	assert.Contains(t, buf.String(), "error_code=init_metrics_failed")
}
