// Package display hosts chart surfaces: it collects their redraw requests,
// gives them a gg drawing context, and paints them on a UI loop, either
// headless or in a terminal.
package display

import (
	"image"
	"sync"

	"go.uber.org/atomic"
)

// Damage accumulates redraw requests until the UI loop takes them.
// Invalidate never blocks on painting.
type Damage struct {
	mu    sync.Mutex
	rect  image.Rectangle
	dirty bool

	requests atomic.Uint64
}

// Invalidate marks rect for redraw, merging it with any pending region.
func (d *Damage) Invalidate(rect image.Rectangle) {
	d.requests.Inc()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dirty {
		d.rect = d.rect.Union(rect)
		return
	}
	d.rect = rect
	d.dirty = true
}

// Take returns and clears the pending region.
func (d *Damage) Take() (image.Rectangle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return image.Rectangle{}, false
	}
	rect := d.rect
	d.rect = image.Rectangle{}
	d.dirty = false

	return rect, true
}

func (d *Damage) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Requests returns the number of Invalidate calls.
func (d *Damage) Requests() uint64 {
	return d.requests.Load()
}
