package display

import (
	"image"
	"image/color"

	"codeberg.org/mutker/chartpipe/internal/chart"
	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"github.com/gogpu/gg"
)

// drawContext is the part of *gg.Context the canvas draws with. gg's
// software renderer always anti-aliases.
type drawContext interface {
	Width() int
	Height() int
	ClearWithColor(col gg.RGBA)
	SetColor(col color.Color)
	SetLineWidth(width float64)
	SetLineCap(lineCap gg.LineCap)
	DrawRectangle(x, y, w, h float64)
	DrawLine(x1, y1, x2, y2 float64)
	Fill() error
	Stroke() error
}

// GGCanvas draws chart strokes into a gg context.
type GGCanvas struct {
	dc  drawContext
	log *logger.Component
}

func NewGGCanvas(dc *gg.Context) *GGCanvas {
	return newCanvas(dc)
}

func newCanvas(dc drawContext) *GGCanvas {
	return &GGCanvas{dc: dc, log: logger.With("display")}
}

func (c *GGCanvas) FillRect(rect image.Rectangle, col color.Color) {
	if rect.Empty() {
		return
	}
	if rect == image.Rect(0, 0, c.dc.Width(), c.dc.Height()) {
		c.dc.ClearWithColor(gg.FromColor(col))
		return
	}
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
	if err := c.dc.Fill(); err != nil {
		c.renderFailed("fill", err)
	}
}

func (c *GGCanvas) DrawLines(lines []float64, stroke chart.Stroke) {
	if len(lines) < 4 {
		return
	}
	c.dc.SetColor(stroke.Color)
	c.dc.SetLineWidth(stroke.Width)
	c.dc.SetLineCap(gg.LineCapRound)
	for i := 0; i+3 < len(lines); i += 4 {
		c.dc.DrawLine(lines[i], lines[i+1], lines[i+2], lines[i+3])
	}
	if err := c.dc.Stroke(); err != nil {
		c.renderFailed("stroke", err)
	}
}

func (c *GGCanvas) renderFailed(op string, err error) {
	c.log.Debug().
		Str("op", op).
		Str("error_code", string(errors.ErrOperationFailed)).
		Err(err).
		Msg("Render operation failed")
}
