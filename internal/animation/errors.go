package animation

import "codeberg.org/mutker/chartpipe/internal/errors"

const (
	ErrInvalidPointCount    = errors.ErrorCode("animation_invalid_point_count")
	ErrSeriesLengthMismatch = errors.ErrorCode("animation_series_length_mismatch")
	ErrMissingSeries        = errors.ErrorCode("animation_missing_series")
	ErrInvalidInterval      = errors.ErrorCode("animation_invalid_interval")
	ErrInvalidSize          = errors.ErrorCode("animation_invalid_size")
)
