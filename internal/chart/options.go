package chart

import (
	"image/color"

	"codeberg.org/mutker/chartpipe/internal/animation"
)

type options struct {
	name            string
	strokeWidth     float64
	background      color.Color
	palette         [3]color.Color
	strict          bool
	frameIntervalMs int
}

func defaultOptions() options {
	return options{
		name:            "chart",
		strokeWidth:     DefaultStrokeWidth,
		background:      DefaultBackground,
		palette:         DefaultPalette,
		frameIntervalMs: animation.FrameInterval,
	}
}

// Option configures a Surface.
type Option func(*options)

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithStrokeWidth sets the line width. Non-positive values are ignored.
func WithStrokeWidth(width float64) Option {
	return func(o *options) {
		if width > 0 {
			o.strokeWidth = width
		}
	}
}

func WithBackground(c color.Color) Option {
	return func(o *options) {
		o.background = c
	}
}

func WithPalette(palette [3]color.Color) Option {
	return func(o *options) {
		o.palette = palette
	}
}

// WithStrict makes the driver read the series under their shared lock.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFrameInterval sets the animation frame period in milliseconds.
func WithFrameInterval(ms int) Option {
	return func(o *options) {
		if ms > 0 {
			o.frameIntervalMs = ms
		}
	}
}
