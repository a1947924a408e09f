package chart

import (
	"image"
	"image/color"
)

// Canvas is the drawing target handed to Paint by the host.
type Canvas interface {
	FillRect(rect image.Rectangle, c color.Color)
	// DrawLines strokes every (x0, y0, x1, y1) quad in lines.
	DrawLines(lines []float64, stroke Stroke)
}

// Stroke is the pen used for one series.
type Stroke struct {
	Color color.Color
	Width float64
}

var (
	// DefaultBackground is the fill behind the lines.
	DefaultBackground color.Color = color.White

	// DefaultPalette is translucent red, green and blue.
	DefaultPalette = [3]color.Color{
		color.NRGBA{R: 255, A: 128},
		color.NRGBA{G: 255, A: 128},
		color.NRGBA{B: 255, A: 128},
	}
)

// DefaultStrokeWidth is the line width in pixels.
const DefaultStrokeWidth = 6.0
