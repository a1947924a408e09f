package animation

// State is the driver's position in the snap/interpolate cycle.
type State int32

const (
	// AwaitingData: no snapshot has been taken yet.
	AwaitingData State = iota
	// Snapping: a new arrival was copied this tick, frame reset to zero.
	Snapping
	// Interpolating: scrolling toward the snapshot one frame per tick.
	Interpolating
	// IdleAtTarget: the last frame is drawn; ticks do nothing until the
	// next arrival.
	IdleAtTarget
)

func (s State) String() string {
	switch s {
	case AwaitingData:
		return "awaiting_data"
	case Snapping:
		return "snapping"
	case Interpolating:
		return "interpolating"
	case IdleAtTarget:
		return "idle_at_target"
	default:
		return "unknown"
	}
}

// Stats are cumulative driver counters.
type Stats struct {
	Ticks               uint64 `json:"ticks"`
	Snaps               uint64 `json:"snaps"`
	InterpolationFrames uint64 `json:"interpolation_frames"`
	Idle                uint64 `json:"idle"`
	Skipped             uint64 `json:"skipped"`
	Aborted             uint64 `json:"aborted"`
	Publishes           uint64 `json:"publishes"`
}
