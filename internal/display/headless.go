package display

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"go.uber.org/atomic"
)

// DefaultRefresh is the default display refresh period.
const DefaultRefresh = 16 * time.Millisecond

// HeadlessConfig configures an offscreen host.
type HeadlessConfig struct {
	Width         int
	Height        int
	Refresh       time.Duration
	SnapshotDir   string
	SnapshotEvery int
}

// Headless paints every panel offscreen on a single UI goroutine, optionally
// writing a PNG per panel every SnapshotEvery painted frames.
type Headless struct {
	cfg    HeadlessConfig
	panels []*Panel

	refreshes atomic.Uint64
	snapshots atomic.Uint64
	log       *logger.Component
}

func NewHeadless(cfg HeadlessConfig, panels ...*Panel) *Headless {
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefresh
	}

	return &Headless{
		cfg:    cfg,
		panels: panels,
		log:    logger.With("display").Str("host", "headless"),
	}
}

// Run attaches the panels and paints them until ctx is done, then detaches
// them.
func (h *Headless) Run(ctx context.Context) error {
	if h.cfg.SnapshotDir != "" {
		if err := os.MkdirAll(h.cfg.SnapshotDir, 0o755); err != nil {
			return errors.New().Wrap(errors.ErrInitDisplay, err)
		}
	}

	for _, p := range h.panels {
		p.Resize(h.cfg.Width, h.cfg.Height)
		p.Surface().OnAttached()
	}
	defer func() {
		for _, p := range h.panels {
			p.Close()
		}
		h.log.Info().
			Uint64("refreshes", h.refreshes.Load()).
			Uint64("snapshots", h.snapshots.Load()).
			Msg("Headless display stopped")
	}()

	h.log.Info().
		Int("panels", len(h.panels)).
		Int("width", h.cfg.Width).
		Int("height", h.cfg.Height).
		Dur("refresh", h.cfg.Refresh).
		Msg("Headless display started")

	ticker := time.NewTicker(h.cfg.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Refresh()
		}
	}
}

// Refresh paints every damaged panel once.
func (h *Headless) Refresh() {
	h.refreshes.Inc()

	for i, p := range h.panels {
		if !p.Paint() {
			continue
		}
		if h.cfg.SnapshotDir == "" || h.cfg.SnapshotEvery <= 0 {
			continue
		}
		if n := p.Frames(); n%uint64(h.cfg.SnapshotEvery) == 0 {
			h.snapshot(i, p, n)
		}
	}
}

func (h *Headless) snapshot(index int, p *Panel, frame uint64) {
	path := filepath.Join(h.cfg.SnapshotDir, fmt.Sprintf("%s-%d-%06d.png", p.Surface().Name(), index, frame))
	if err := p.SavePNG(path); err != nil {
		h.log.ErrorWithCode(errors.New().Wrap(errors.ErrOperationFailed, err)).
			Str("path", path).
			Msg("Failed to write snapshot")
		return
	}
	h.snapshots.Inc()
	h.log.Debug().Str("path", path).Msg("Snapshot written")
}

// Snapshots returns the number of PNG files written.
func (h *Headless) Snapshots() uint64 {
	return h.snapshots.Load()
}
