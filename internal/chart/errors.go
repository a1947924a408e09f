package chart

import "codeberg.org/mutker/chartpipe/internal/errors"

const (
	ErrInvalidPointCount    = errors.ErrorCode("chart_invalid_point_count")
	ErrSeriesLengthMismatch = errors.ErrorCode("chart_series_length_mismatch")
	ErrMissingSeries        = errors.ErrorCode("chart_missing_series")
	ErrInvalidInterval      = errors.ErrorCode("chart_invalid_interval")
	ErrAlreadyInitialized   = errors.ErrorCode("chart_already_initialized")
)
