// Package animation drives one chart: it detects new sample arrivals,
// scrolls the chart toward them one frame per tick, and publishes the
// regenerated line segments for painting.
package animation

import (
	"image"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"codeberg.org/mutker/chartpipe/internal/render"
	"codeberg.org/mutker/chartpipe/internal/series"
	"codeberg.org/mutker/chartpipe/internal/worker"
	"go.uber.org/atomic"
)

// Invalidator receives redraw requests. Invalidate must not block.
type Invalidator interface {
	Invalidate(rect image.Rectangle)
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(rect image.Rectangle)

func (f InvalidatorFunc) Invalidate(rect image.Rectangle) {
	f(rect)
}

// Config holds the fixed parameters of a driver.
type Config struct {
	Points           int
	SampleIntervalMs int
	FrameIntervalMs  int
	Strict           bool
	Name             string
}

// Geometry is the drawable size and the scale factors derived from it.
type Geometry struct {
	Width  int
	Height int
	ScaleX float64
	ScaleY float64
}

// Bounds returns the redraw region covering the whole surface.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Driver is the per-chart animation state machine. Tick is called from a
// single goroutine at a time: the driver worker once started, or the caller
// directly while stopped.
type Driver struct {
	cfg            Config
	series         [series.Count]*series.Series
	inv            Invalidator
	buffer         *render.Buffer
	worker         *worker.Periodic
	framesPerValue int

	geometry atomic.Pointer[Geometry]
	strict   atomic.Bool

	// Owned by the ticking goroutine.
	snapshot [series.Count][]float64
	snapGen  uint64
	filled   bool

	beforeCopy func()

	frame atomic.Int32
	state atomic.Int32

	ticks     atomic.Uint64
	snaps     atomic.Uint64
	interps   atomic.Uint64
	idle      atomic.Uint64
	skipped   atomic.Uint64
	aborted   atomic.Uint64
	publishes atomic.Uint64

	log *logger.Component
}

func New(cfg Config, src [series.Count]*series.Series, inv Invalidator) (*Driver, error) {
	errFactory := errors.New()

	if cfg.Points < 2 {
		return nil, errFactory.WithData(ErrInvalidPointCount, struct {
			Points int
		}{cfg.Points}).WithMessage("chart needs at least two points")
	}
	for i, s := range src {
		if s == nil {
			return nil, errFactory.WithData(ErrMissingSeries, struct {
				Series int
			}{i})
		}
		if s.Len() != cfg.Points {
			return nil, errFactory.WithData(ErrSeriesLengthMismatch, struct {
				Series, Len, Points int
			}{i, s.Len(), cfg.Points})
		}
	}
	if cfg.SampleIntervalMs <= 0 || cfg.FrameIntervalMs < 0 {
		return nil, errFactory.WithData(ErrInvalidInterval, struct {
			SampleIntervalMs, FrameIntervalMs int
		}{cfg.SampleIntervalMs, cfg.FrameIntervalMs})
	}
	if cfg.FrameIntervalMs == 0 {
		cfg.FrameIntervalMs = FrameInterval
	}
	if inv == nil {
		inv = InvalidatorFunc(func(image.Rectangle) {})
	}
	name := cfg.Name
	if name == "" {
		name = "chart"
	}

	d := &Driver{
		cfg:            cfg,
		series:         src,
		inv:            inv,
		buffer:         render.NewBuffer(cfg.Points),
		framesPerValue: FramesPerValue(cfg.SampleIntervalMs, cfg.FrameIntervalMs),
		log:            logger.With("animation").Str("chart", name),
	}
	for i := range d.snapshot {
		d.snapshot[i] = make([]float64, cfg.Points)
	}
	d.strict.Store(cfg.Strict)
	d.worker = worker.New(name, time.Duration(cfg.FrameIntervalMs)*time.Millisecond, func() { d.Tick() })

	d.log.Debug().
		Int("points", cfg.Points).
		Int("frames_per_value", d.framesPerValue).
		Bool("strict", cfg.Strict).
		Msg("Animation driver created")

	return d, nil
}

// SetSize recomputes the geometry read by the next tick. A non-positive
// dimension clears the geometry, and ticks are skipped until a valid size
// arrives.
func (d *Driver) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		d.geometry.Store(nil)
		return errors.New().WithData(ErrInvalidSize, struct {
			Width, Height int
		}{width, height})
	}

	d.geometry.Store(&Geometry{
		Width:  width,
		Height: height,
		ScaleX: float64(width) / float64(d.cfg.Points-1),
		ScaleY: float64(height),
	})
	d.log.Debug().Int("width", width).Int("height", height).Msg("Geometry updated")

	return nil
}

// Geometry returns the current geometry and whether one is set.
func (d *Driver) Geometry() (Geometry, bool) {
	g := d.geometry.Load()
	if g == nil {
		return Geometry{}, false
	}
	return *g, true
}

// Tick advances the state machine by one frame and reports whether a new
// frame was published.
func (d *Driver) Tick() bool {
	d.ticks.Inc()

	g := d.geometry.Load()
	if g == nil || d.buffer.Released() {
		d.skipped.Inc()
		return false
	}

	frame := int(d.frame.Load())
	switch {
	case d.arrived():
		if d.filled && frame < d.framesPerValue {
			d.aborted.Inc()
		}
		d.filled = true
		frame = 0
		d.snaps.Inc()
		d.state.Store(int32(Snapping))
	case frame < d.framesPerValue:
		frame++
		d.interps.Inc()
		if frame == d.framesPerValue {
			d.state.Store(int32(IdleAtTarget))
		} else {
			d.state.Store(int32(Interpolating))
		}
	default:
		d.idle.Inc()
		d.state.Store(int32(IdleAtTarget))
		return false
	}
	d.frame.Store(int32(frame))

	return d.repaint(g, frame)
}

// arrived compares the snapshot's arrival generation of series 0 with the
// live one and, on a difference, copies all three series into the snapshot.
func (d *Driver) arrived() bool {
	if d.strict.Load() {
		lock := d.series[0].ReadLocker()
		lock.Lock()
		defer lock.Unlock()
	}

	gen := d.series[0].Generation()
	if d.filled && gen == d.snapGen {
		return false
	}
	if d.beforeCopy != nil {
		d.beforeCopy()
	}

	for i, s := range d.series {
		s.CopyTo(d.snapshot[i])
	}
	// An append landing during the copy is already in the snapshot.
	d.snapGen = d.series[0].Generation()

	return true
}

func (d *Driver) repaint(g *Geometry, frame int) bool {
	xOffset := float64(frame) * (g.ScaleX / float64(d.framesPerValue))

	ok := d.buffer.Publish(func(f *render.Frame) {
		for i := range f.Lines {
			GenerateLines(f.Lines[i], d.snapshot[i], g.ScaleX, g.ScaleY, xOffset)
		}
	})
	if !ok {
		d.skipped.Inc()
		return false
	}
	d.publishes.Inc()
	d.inv.Invalidate(g.Bounds())

	return true
}

// Start launches the driver worker, reallocating buffers released by a
// previous Release. It returns false if already running.
func (d *Driver) Start() bool {
	if d.worker.Running() {
		return false
	}
	if d.buffer.Released() {
		d.buffer.Reset()
		d.filled = false
		d.frame.Store(0)
		d.state.Store(int32(AwaitingData))
	}

	return d.worker.Start()
}

// Stop halts the driver worker and waits for an in-flight tick. Stop is
// idempotent.
func (d *Driver) Stop() {
	d.worker.Stop()
}

// Release stops the driver and drops its buffers. Release is idempotent.
func (d *Driver) Release() {
	d.worker.Stop()
	d.buffer.Release()
}

func (d *Driver) Running() bool {
	return d.worker.Running()
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

func (d *Driver) CurrentFrame() int {
	return int(d.frame.Load())
}

func (d *Driver) FramesPerValue() int {
	return d.framesPerValue
}

// Buffer returns the double buffer the driver publishes into.
func (d *Driver) Buffer() *render.Buffer {
	return d.buffer
}

// SetStrict toggles taking the series read lock around arrival detection
// and the snapshot copy.
func (d *Driver) SetStrict(strict bool) {
	if d.strict.Swap(strict) != strict {
		d.log.Info().Bool("strict", strict).Msg("Series locking changed")
	}
}

func (d *Driver) Strict() bool {
	return d.strict.Load()
}

// Snapshot returns a copy of the local snapshot. It must not be called
// while the worker is running.
func (d *Driver) Snapshot() [series.Count][]float64 {
	var out [series.Count][]float64
	for i, s := range d.snapshot {
		out[i] = append([]float64(nil), s...)
	}
	return out
}

func (d *Driver) Stats() Stats {
	return Stats{
		Ticks:               d.ticks.Load(),
		Snaps:               d.snaps.Load(),
		InterpolationFrames: d.interps.Load(),
		Idle:                d.idle.Load(),
		Skipped:             d.skipped.Load(),
		Aborted:             d.aborted.Load(),
		Publishes:           d.publishes.Load(),
	}
}
