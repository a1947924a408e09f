// Package producer appends new samples to the shared series on its own
// schedule.
package producer

import (
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"codeberg.org/mutker/chartpipe/internal/series"
	"codeberg.org/mutker/chartpipe/internal/worker"
	"go.uber.org/atomic"
)

// DefaultInterval is the default time between samples.
const DefaultInterval = 100 * time.Millisecond

// Producer appends one sample per series on every tick.
type Producer struct {
	set    *series.Set
	src    Source
	worker *worker.Periodic

	appends  atomic.Uint64
	failures atomic.Uint64
	log      *logger.Component
}

func New(set *series.Set, src Source, interval time.Duration) *Producer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Producer{
		set: set,
		src: src,
		log: logger.With("producer"),
	}
	p.worker = worker.New("producer", interval, p.Tick)

	return p
}

// Tick draws one sample per series and appends all three under the series
// lock. A source failure skips the tick.
func (p *Producer) Tick() {
	values, err := p.src.Next()
	if err != nil {
		p.failures.Inc()
		var coded errors.Error
		if !errors.As(err, &coded) {
			coded = errors.New().Wrap(ErrSourceFailed, err)
		}
		p.log.ErrorWithCode(coded).Msg("Failed to read sample source")
		return
	}

	p.set.Append(values)
	p.appends.Inc()
}

// Start begins producing. The first sample is appended immediately.
func (p *Producer) Start() bool {
	started := p.worker.Start()
	if started {
		p.log.Info().Dur("interval", p.worker.Interval()).Msg("Producer resumed")
	}

	return started
}

// Stop halts producing. Stop is idempotent.
func (p *Producer) Stop() {
	if !p.worker.Running() {
		return
	}
	p.worker.Stop()
	p.log.Info().Uint64("appends", p.appends.Load()).Msg("Producer paused")
}

func (p *Producer) Running() bool {
	return p.worker.Running()
}

// Appends returns the number of completed ticks.
func (p *Producer) Appends() uint64 {
	return p.appends.Load()
}

// Failures returns the number of ticks skipped on a source error.
func (p *Producer) Failures() uint64 {
	return p.failures.Load()
}

// Interval returns the producer period.
func (p *Producer) Interval() time.Duration {
	return p.worker.Interval()
}
