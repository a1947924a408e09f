// Package worker runs the self-rescheduling background tasks that drive the
// producer and every chart.
package worker

import (
	"sync"
	"time"

	"codeberg.org/mutker/chartpipe/internal/logger"
	"go.uber.org/atomic"
)

// Periodic calls a function on its own goroutine at a fixed cadence. The
// schedule is independent of how long a call takes: a slow call delays only
// itself, missed ticks are dropped rather than queued, and calls never
// overlap.
type Periodic struct {
	name     string
	interval time.Duration
	fn       func()
	delayed  bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	runs atomic.Uint64
	log  *logger.Component
}

// Option configures a Periodic.
type Option func(*Periodic)

// WithInitialDelay waits one interval before the first call instead of
// calling immediately on Start.
func WithInitialDelay() Option {
	return func(p *Periodic) {
		p.delayed = true
	}
}

// New creates a stopped Periodic. interval must be positive.
func New(name string, interval time.Duration, fn func(), opts ...Option) *Periodic {
	if interval <= 0 {
		panic("worker: interval must be positive")
	}
	p := &Periodic{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      logger.With("worker").Str("worker", name),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start launches the worker goroutine. It returns false if the worker is
// already running.
func (p *Periodic) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return false
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)

	p.log.Debug().Dur("interval", p.interval).Msg("Worker started")

	return true
}

// Stop halts the worker and waits for its goroutine to exit. A call in
// flight is allowed to finish. Stop is idempotent and must not be called
// from the worker's own function.
func (p *Periodic) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	p.log.Debug().Uint64("runs", p.runs.Load()).Msg("Worker stopped")
}

// Running reports whether the worker goroutine is active.
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stop != nil
}

// Runs returns the number of completed calls since creation.
func (p *Periodic) Runs() uint64 {
	return p.runs.Load()
}

// Interval returns the configured cadence.
func (p *Periodic) Interval() time.Duration {
	return p.interval
}

func (p *Periodic) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if !p.delayed {
		p.call()
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Prefer stopping over one more call when both are ready.
			select {
			case <-stop:
				return
			default:
			}
			p.call()
		}
	}
}

func (p *Periodic) call() {
	p.fn()
	p.runs.Inc()
}
