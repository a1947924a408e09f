// Package chart is the drawable surface of one three-series line chart. The
// host forwards size, attach and detach notifications and calls Paint when
// the surface asks to be redrawn.
package chart

import (
	"image"
	"sync"

	"codeberg.org/mutker/chartpipe/internal/animation"
	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"codeberg.org/mutker/chartpipe/internal/render"
	"codeberg.org/mutker/chartpipe/internal/series"
	"go.uber.org/atomic"
)

// Surface owns an animation driver and paints its published frames.
// Notifications and Paint are called from the host's UI goroutine.
type Surface struct {
	inv  animation.Invalidator
	opts options

	mu       sync.Mutex
	driver   *animation.Driver
	width    int
	height   int
	attached bool

	scratch *render.Frame
	paints  atomic.Uint64
	log     *logger.Component
}

func New(inv animation.Invalidator, opts ...Option) *Surface {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Surface{
		inv:  inv,
		opts: o,
		log:  logger.With("chart").Str("chart", o.name),
	}
}

// Initialize binds the surface to three shared series. It validates the
// point count, series lengths and sample interval once and may be called
// only once.
func (s *Surface) Initialize(s1, s2, s3 *series.Series, pointCount, sampleIntervalMs int) error {
	errFactory := errors.New()
	src := [series.Count]*series.Series{s1, s2, s3}

	if pointCount < 2 {
		return errFactory.WithData(ErrInvalidPointCount, struct {
			PointCount int
		}{pointCount}).WithMessage("point count must be at least 2")
	}
	for i, sr := range src {
		if sr == nil {
			return errFactory.WithData(ErrMissingSeries, struct {
				Series int
			}{i + 1})
		}
		if sr.Len() != pointCount {
			return errFactory.WithData(ErrSeriesLengthMismatch, struct {
				Series, Len, PointCount int
			}{i + 1, sr.Len(), pointCount})
		}
	}
	if sampleIntervalMs <= 0 {
		return errFactory.WithData(ErrInvalidInterval, struct {
			SampleIntervalMs int
		}{sampleIntervalMs})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driver != nil {
		return errFactory.New(ErrAlreadyInitialized)
	}

	d, err := animation.New(animation.Config{
		Points:           pointCount,
		SampleIntervalMs: sampleIntervalMs,
		FrameIntervalMs:  s.opts.frameIntervalMs,
		Strict:           s.opts.strict,
		Name:             s.opts.name,
	}, src, s.inv)
	if err != nil {
		return err
	}
	s.driver = d
	s.scratch = render.NewFrame(pointCount)

	if s.width > 0 && s.height > 0 {
		_ = d.SetSize(s.width, s.height)
	}
	if s.attached {
		d.Start()
	}

	s.log.Info().
		Int("points", pointCount).
		Int("sample_interval_ms", sampleIntervalMs).
		Int("frames_per_value", d.FramesPerValue()).
		Msg("Chart initialized")

	return nil
}

// OnSizeChanged records the new drawable size. The driver picks it up on
// its next tick.
func (s *Surface) OnSizeChanged(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width, s.height = width, height
	if s.driver == nil {
		return
	}
	if err := s.driver.SetSize(width, height); err != nil {
		s.log.Debug().Int("width", width).Int("height", height).Msg("Surface has no drawable area")
	}
}

// OnAttached starts the driver. Buffers released by a detach are
// reallocated.
func (s *Surface) OnAttached() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = true
	if s.driver != nil && s.driver.Start() {
		s.log.Debug().Msg("Chart attached")
	}
}

// OnDetached stops the driver and releases its buffers. OnDetached is
// idempotent.
func (s *Surface) OnDetached() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return
	}
	s.attached = false
	if s.driver != nil {
		s.driver.Release()
		s.log.Debug().Msg("Chart detached")
	}
}

// Paint fills the background and strokes the current frame. The buffer
// lock is held only while copying into the surface's scratch frame.
func (s *Surface) Paint(c Canvas) {
	s.mu.Lock()
	d := s.driver
	bounds := image.Rect(0, 0, s.width, s.height)
	s.mu.Unlock()

	s.paints.Inc()
	c.FillRect(bounds, s.opts.background)

	if d == nil || !d.Buffer().CopyTo(s.scratch) {
		return
	}
	for i, lines := range s.scratch.Lines {
		c.DrawLines(lines, Stroke{
			Color: s.opts.palette[i],
			Width: s.opts.strokeWidth,
		})
	}
}

// Paints returns the number of Paint calls.
func (s *Surface) Paints() uint64 {
	return s.paints.Load()
}

// Size returns the last size reported by the host.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) Name() string {
	return s.opts.name
}

// Driver returns the animation driver, or nil before Initialize.
func (s *Surface) Driver() *animation.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// SetStrict toggles locked series reads for this chart.
func (s *Surface) SetStrict(strict bool) {
	s.mu.Lock()
	s.opts.strict = strict
	d := s.driver
	s.mu.Unlock()

	if d != nil {
		d.SetStrict(strict)
	}
}

// Stats returns the driver counters, zero before Initialize.
func (s *Surface) Stats() animation.Stats {
	if d := s.Driver(); d != nil {
		return d.Stats()
	}
	return animation.Stats{}
}
