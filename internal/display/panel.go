package display

import (
	"image"

	"codeberg.org/mutker/chartpipe/internal/chart"
	"github.com/gogpu/gg"
	"go.uber.org/atomic"
)

// Panel is one chart surface together with its damage tracker and the gg
// context it paints into. Panel methods other than Damage are called from
// the UI goroutine only.
type Panel struct {
	damage  *Damage
	surface *chart.Surface

	dc     *gg.Context
	canvas *GGCanvas
	frames atomic.Uint64
}

// NewPanel creates a surface wired to its own damage tracker.
func NewPanel(opts ...chart.Option) *Panel {
	d := &Damage{}
	return &Panel{
		damage:  d,
		surface: chart.New(d, opts...),
	}
}

func (p *Panel) Surface() *chart.Surface {
	return p.surface
}

func (p *Panel) Damage() *Damage {
	return p.damage
}

// Resize replaces the drawing context and forwards the new size to the
// surface. It is a no-op when the size is unchanged.
func (p *Panel) Resize(width, height int) {
	if p.dc != nil && p.dc.Width() == width && p.dc.Height() == height {
		return
	}
	if p.dc != nil {
		_ = p.dc.Close()
		p.dc, p.canvas = nil, nil
	}
	if width > 0 && height > 0 {
		p.dc = gg.NewContext(width, height)
		p.canvas = NewGGCanvas(p.dc)
	}
	p.surface.OnSizeChanged(width, height)
	p.damage.Invalidate(image.Rect(0, 0, width, height))
}

// Paint repaints the surface if it asked for a redraw and reports whether
// it did.
func (p *Panel) Paint() bool {
	if _, ok := p.damage.Take(); !ok || p.canvas == nil {
		return false
	}
	p.surface.Paint(p.canvas)
	p.frames.Inc()

	return true
}

// Frames returns the number of painted frames.
func (p *Panel) Frames() uint64 {
	return p.frames.Load()
}

func (p *Panel) Size() (int, int) {
	if p.dc == nil {
		return 0, 0
	}
	return p.dc.Width(), p.dc.Height()
}

// Image returns the painted pixels, or nil before the first resize.
func (p *Panel) Image() image.Image {
	if p.dc == nil {
		return nil
	}
	return p.dc.Image()
}

func (p *Panel) SavePNG(path string) error {
	if p.dc == nil {
		return nil
	}
	return p.dc.SavePNG(path)
}

// Close detaches the surface and drops the drawing context.
func (p *Panel) Close() {
	p.surface.OnDetached()
	if p.dc != nil {
		_ = p.dc.Close()
		p.dc, p.canvas = nil, nil
	}
}
