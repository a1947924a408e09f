package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
)

// DefaultInterval is the default time between recorded snapshots.
const DefaultInterval = 5 * time.Second

// Provider builds a snapshot of the current counters.
type Provider func() *Snapshot

// Recorder samples a Provider on a fixed interval and hands each snapshot to
// a Collector.
type Recorder struct {
	collector Collector
	provider  Provider
	interval  time.Duration
	log       *logger.Component
}

func NewRecorder(c Collector, p Provider, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Recorder{
		collector: c,
		provider:  p,
		interval:  interval,
		log:       logger.With("metrics"),
	}
}

// Run records until ctx is done, then records one final snapshot.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.record(context.Background())
			return nil
		case <-ticker.C:
			r.record(ctx)
		}
	}
}

func (r *Recorder) record(ctx context.Context) {
	snapshot := r.provider()
	if snapshot == nil {
		return
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now()
	}

	if err := r.collector.Record(ctx, snapshot); err != nil {
		var coded errors.Error
		if !errors.As(err, &coded) {
			coded = errors.New().Wrap(ErrMetricsCollection, err)
		}
		r.log.ErrorWithCode(coded).Msg("Failed to record metrics")
	}
}
