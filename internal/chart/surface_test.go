package chart_test

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/chartpipe/internal/animation"
	"codeberg.org/mutker/chartpipe/internal/chart"
	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/render"
	"codeberg.org/mutker/chartpipe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fill struct {
	rect  image.Rectangle
	color color.Color
}

type stroke struct {
	lines  []float64
	stroke chart.Stroke
}

type fakeCanvas struct {
	fills   []fill
	strokes []stroke
}

func (c *fakeCanvas) FillRect(rect image.Rectangle, col color.Color) {
	c.fills = append(c.fills, fill{rect, col})
}

func (c *fakeCanvas) DrawLines(lines []float64, s chart.Stroke) {
	c.strokes = append(c.strokes, stroke{append([]float64(nil), lines...), s})
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Invalidate(image.Rectangle) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestInitializeValidation(t *testing.T) {
	set := series.NewSet(10)
	s1, s2, s3 := set.Series(0), set.Series(1), set.Series(2)
	short := series.NewSet(5).Series(0)

	tests := []struct {
		name       string
		a, b, c    *series.Series
		points     int
		intervalMs int
		code       errors.ErrorCode
	}{
		{"point count", s1, s2, s3, 1, 100, chart.ErrInvalidPointCount},
		{"nil series", s1, nil, s3, 10, 100, chart.ErrMissingSeries},
		{"length mismatch", s1, s2, short, 10, 100, chart.ErrSeriesLengthMismatch},
		{"zero interval", s1, s2, s3, 10, 0, chart.ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := chart.New(nil).Initialize(tt.a, tt.b, tt.c, tt.points, tt.intervalMs)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestInitializeTwice(t *testing.T) {
	set := series.NewSet(10)
	s := chart.New(nil)
	require.NoError(t, s.Initialize(set.Series(0), set.Series(1), set.Series(2), 10, 100))

	err := s.Initialize(set.Series(0), set.Series(1), set.Series(2), 10, 100)
	assert.Equal(t, chart.ErrAlreadyInitialized, errors.CodeOf(err))
}

func TestPaintBeforeFirstFrameDrawsBackground(t *testing.T) {
	s := chart.New(nil)
	s.OnSizeChanged(100, 50)

	c := &fakeCanvas{}
	s.Paint(c)

	require.Len(t, c.fills, 1)
	assert.Equal(t, image.Rect(0, 0, 100, 50), c.fills[0].rect)
	assert.Equal(t, chart.DefaultBackground, c.fills[0].color)
	assert.Empty(t, c.strokes)
	assert.Equal(t, uint64(1), s.Paints())
}

func TestPaintDrawsThreeStrokes(t *testing.T) {
	set := series.NewSet(5)
	set.Append([series.Count]float64{1, 0.5, 0.25})

	s := chart.New(nil, chart.WithName("cpu"))
	s.OnSizeChanged(40, 10)
	require.NoError(t, s.Initialize(set.Series(0), set.Series(1), set.Series(2), 5, 100))
	assert.Equal(t, "cpu", s.Name())

	require.True(t, s.Driver().Tick())

	c := &fakeCanvas{}
	s.Paint(c)

	require.Len(t, c.strokes, 3)
	for i, st := range c.strokes {
		assert.Len(t, st.lines, render.SegmentLen(5))
		assert.Equal(t, chart.DefaultPalette[i], st.stroke.Color)
		assert.Equal(t, chart.DefaultStrokeWidth, st.stroke.Width)
	}
	last := render.SegmentLen(5) - 1
	assert.Equal(t, 10.0, c.strokes[0].lines[last])
	assert.Equal(t, 5.0, c.strokes[1].lines[last])
	assert.Equal(t, 2.5, c.strokes[2].lines[last])
}

func TestOptions(t *testing.T) {
	set := series.NewSet(3)
	palette := [3]color.Color{color.Black, color.Black, color.Black}
	s := chart.New(nil,
		chart.WithStrokeWidth(2),
		chart.WithStrokeWidth(-1),
		chart.WithBackground(color.Black),
		chart.WithPalette(palette),
		chart.WithStrict(true),
		chart.WithFrameInterval(20),
	)
	s.OnSizeChanged(20, 20)
	require.NoError(t, s.Initialize(set.Series(0), set.Series(1), set.Series(2), 3, 100))
	assert.True(t, s.Driver().Strict())
	assert.Equal(t, 5, s.Driver().FramesPerValue())

	s.Driver().Tick()
	c := &fakeCanvas{}
	s.Paint(c)
	assert.Equal(t, color.Black, c.fills[0].color)
	assert.Equal(t, 2.0, c.strokes[0].stroke.Width)
	assert.Equal(t, color.Black, c.strokes[2].stroke.Color)

	s.SetStrict(false)
	assert.False(t, s.Driver().Strict())
}

func TestSizeBeforeInitializeIsApplied(t *testing.T) {
	set := series.NewSet(11)
	s := chart.New(nil)
	s.OnSizeChanged(100, 40)
	require.NoError(t, s.Initialize(set.Series(0), set.Series(1), set.Series(2), 11, 100))

	g, ok := s.Driver().Geometry()
	require.True(t, ok)
	assert.Equal(t, 10.0, g.ScaleX)

	w, h := s.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 40, h)
}

func TestAttachDetachLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	set := series.NewSet(10)
	inv := &counter{}
	s := chart.New(inv, chart.WithFrameInterval(1))
	s.OnSizeChanged(90, 30)
	s.OnAttached()
	require.NoError(t, s.Initialize(set.Series(0), set.Series(1), set.Series(2), 10, 100))

	d := s.Driver()
	assert.True(t, d.Running(), "attach before initialize starts the driver")
	assert.Eventually(t, func() bool { return inv.count() > 0 }, time.Second, time.Millisecond)

	s.OnDetached()
	s.OnDetached()
	assert.False(t, d.Running())
	assert.True(t, d.Buffer().Released())

	c := &fakeCanvas{}
	s.Paint(c)
	assert.Empty(t, c.strokes, "detached surface paints only the background")

	s.OnAttached()
	assert.True(t, d.Running())
	assert.Eventually(t, func() bool { return d.Buffer().Seq() > 0 }, time.Second, time.Millisecond)
	s.OnDetached()
}

func TestStatsBeforeInitialize(t *testing.T) {
	assert.Equal(t, animation.Stats{}, chart.New(nil).Stats())
}
