// Package series holds the shared sample series the producer appends to and
// every chart driver reads.
//
// Values are stored as per-element atomics and read without the producer
// lock by default. A reader copying a series while the producer shifts it
// can observe a mix of pre- and post-shift elements; that tear is the
// diagnostic behaviour the charts expose. Strict readers take ReadLocker.
package series

import (
	"sync"

	"go.uber.org/atomic"
)

// Count is the number of parallel series in a Set.
const Count = 3

// DefaultPoints is the default series length.
const DefaultPoints = 50

// Series is a fixed-length shift-left-and-push sequence of samples.
type Series struct {
	values []atomic.Float64
	gen    atomic.Uint64
	lock   *sync.RWMutex
}

func newSeries(points int, lock *sync.RWMutex) *Series {
	return &Series{
		values: make([]atomic.Float64, points),
		lock:   lock,
	}
}

// Len returns the fixed number of points.
func (s *Series) Len() int {
	return len(s.values)
}

// Generation returns the number of samples appended so far. It changes on
// every arrival, including one whose value equals the previous sample.
func (s *Series) Generation() uint64 {
	return s.gen.Load()
}

// Value returns the sample at index i without locking.
func (s *Series) Value(i int) float64 {
	return s.values[i].Load()
}

// CopyTo copies min(len(dst), Len()) samples into dst without locking and
// returns the number copied.
func (s *Series) CopyTo(dst []float64) int {
	n := len(dst)
	if n > len(s.values) {
		n = len(s.values)
	}
	for i := 0; i < n; i++ {
		dst[i] = s.values[i].Load()
	}

	return n
}

// Values returns an unlocked copy of the series.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	s.CopyTo(out)

	return out
}

// ReadLocker returns the read side of the lock shared by the owning Set.
func (s *Series) ReadLocker() sync.Locker {
	return s.lock.RLocker()
}

// push must be called with the owning Set's write lock held.
func (s *Series) push(v float64) {
	last := len(s.values) - 1
	for i := 0; i < last; i++ {
		s.values[i].Store(s.values[i+1].Load())
	}
	s.values[last].Store(v)
	s.gen.Inc()
}

// Set is the three series guarded by a single lock.
type Set struct {
	mu     sync.RWMutex
	series [Count]*Series
}

// NewSet creates three zero-filled series of the given length. points below
// two is a programmer error.
func NewSet(points int) *Set {
	if points < 2 {
		panic("series: points must be at least 2")
	}
	s := &Set{}
	for i := range s.series {
		s.series[i] = newSeries(points, &s.mu)
	}

	return s
}

// Points returns the length of every series in the set.
func (s *Set) Points() int {
	return s.series[0].Len()
}

// Series returns series id, 0 <= id < Count.
func (s *Set) Series(id int) *Series {
	return s.series[id]
}

// All returns the three series in order.
func (s *Set) All() [Count]*Series {
	return s.series
}

// AppendSample shifts series id left by one slot and writes value into the
// last slot.
func (s *Set) AppendSample(id int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[id].push(value)
}

// Append appends one value to each series under a single lock hold, so a
// locked reader never sees the three series at different ticks.
func (s *Set) Append(values [Count]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range values {
		s.series[i].push(v)
	}
}

// AppendBatch holds the write lock while fn runs, appending each row fn
// passes to add. fn must not call other Set methods.
func (s *Set) AppendBatch(fn func(add func(values [Count]float64))) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(func(values [Count]float64) {
		for i, v := range values {
			s.series[i].push(v)
		}
	})
}

// Fill appends value to every series until each has been fully rewritten.
func (s *Set) Fill(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range s.Points() {
		for _, sr := range s.series {
			sr.push(value)
		}
	}
}
