// Package render holds the double-buffered line segment triple shared by
// an animation driver (single writer) and a paint consumer.
package render

import (
	"sync"
)

// Lines is the number of line buffers in a frame, one per series.
const Lines = 3

// SegmentLen returns the buffer length for a chart of the given point
// count: one (x0, y0, x1, y1) quad per adjacent pair of points.
func SegmentLen(points int) int {
	return 4 * (points - 1)
}

// Frame is a triple of line segment buffers authored by one driver tick.
type Frame struct {
	Seq   uint64
	Lines [Lines][]float64
}

func NewFrame(points int) *Frame {
	f := &Frame{}
	f.alloc(points)
	return f
}

func (f *Frame) alloc(points int) {
	n := SegmentLen(points)
	for i := range f.Lines {
		f.Lines[i] = make([]float64, n)
	}
}

// Buffer is a front/back pair of frames. The writer mutex serialises
// Publish with Release and Reset; mu guards only the swap and the paint
// side copy, so neither side holds a lock across drawing.
type Buffer struct {
	points int

	wmu sync.Mutex
	seq uint64

	mu        sync.Mutex
	front     *Frame
	back      *Frame
	published bool
	released  bool
}

// NewBuffer allocates both frames. It panics on fewer than two points.
func NewBuffer(points int) *Buffer {
	if points < 2 {
		panic("render: buffer needs at least two points")
	}

	return &Buffer{
		points: points,
		front:  NewFrame(points),
		back:   NewFrame(points),
	}
}

func (b *Buffer) Points() int {
	return b.points
}

// Publish lets fill author the back frame, then makes it the front frame.
// It returns false without calling fill once the buffer is released.
func (b *Buffer) Publish(fill func(*Frame)) bool {
	b.wmu.Lock()
	defer b.wmu.Unlock()

	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return false
	}
	back := b.back
	b.mu.Unlock()

	b.seq++
	back.Seq = b.seq
	fill(back)

	b.mu.Lock()
	b.front, b.back = back, b.front
	b.published = true
	b.mu.Unlock()

	return true
}

// CopyTo copies the current front frame into dst. It reports false, leaving
// dst untouched, before the first publish or after release.
func (b *Buffer) CopyTo(dst *Frame) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.published || b.released {
		return false
	}

	for i, src := range b.front.Lines {
		if len(dst.Lines[i]) != len(src) {
			dst.Lines[i] = make([]float64, len(src))
		}
		copy(dst.Lines[i], src)
	}
	dst.Seq = b.front.Seq

	return true
}

// Seq returns the sequence number of the last published frame.
func (b *Buffer) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.published || b.released {
		return 0
	}
	return b.front.Seq
}

// Release drops both frames. Release is idempotent.
func (b *Buffer) Release() {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	b.front, b.back = nil, nil
	b.published = false
	b.released = true
}

func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Reset reallocates both frames after a release.
func (b *Buffer) Reset() {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.released {
		return
	}
	b.front = NewFrame(b.points)
	b.back = NewFrame(b.points)
	b.released = false
}
