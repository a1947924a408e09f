package metrics

import (
	"context"
	"time"
)

// Collector records pipeline statistics.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository persists snapshots.
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one sample of the pipeline counters. It carries no series
// values.
type Snapshot struct {
	Timestamp time.Time
	Producer  ProducerStats
	Charts    []ChartStats
}

type ProducerStats struct {
	Appends  uint64
	Failures uint64
	Running  bool
}

// ChartStats are the cumulative counters of one chart's driver and surface.
type ChartStats struct {
	Chart               string
	Ticks               uint64
	Snaps               uint64
	InterpolationFrames uint64
	Idle                uint64
	Skipped             uint64
	Aborted             uint64
	Publishes           uint64
	Paints              uint64
	Strict              bool
}
