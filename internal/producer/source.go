package producer

import (
	"math/rand"
	"sync"
	"time"

	"codeberg.org/mutker/chartpipe/internal/series"
)

// Source yields the next sample for each of the three series.
type Source interface {
	Next() ([series.Count]float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() ([series.Count]float64, error)

func (f SourceFunc) Next() ([series.Count]float64, error) {
	return f()
}

// RandomSource yields independent uniform samples in [0, 1).
type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource creates a RandomSource. A zero seed seeds from the clock.
func NewRandomSource(seed int64) *RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSource{rnd: rand.New(rand.NewSource(seed))}
}

func (r *RandomSource) Next() ([series.Count]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out [series.Count]float64
	for i := range out {
		out[i] = r.rnd.Float64()
	}

	return out, nil
}
