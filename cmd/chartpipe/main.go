package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/chartpipe/internal/chart"
	"codeberg.org/mutker/chartpipe/internal/config"
	"codeberg.org/mutker/chartpipe/internal/display"
	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"codeberg.org/mutker/chartpipe/internal/metrics"
	"codeberg.org/mutker/chartpipe/internal/producer"
	"codeberg.org/mutker/chartpipe/internal/series"
	"golang.org/x/sync/errgroup"
)

type host interface {
	Run(ctx context.Context) error
}

var (
	cfg     *config.Config
	logFile *os.File
	closers []func() error
)

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}

	out, err := logOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	logger.Init(level, out, logger.IsService())
	display.SetRendererLogging(out, level == logger.DebugLevel)
	logger.Debug().Msg("Config loaded")
}

// logOutput redirects logs to a file while the terminal display owns the
// screen.
func logOutput() (io.Writer, error) {
	var err error
	switch {
	case cfg.LogFile != "":
		logFile, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	case cfg.Display == config.DisplayTerminal:
		logFile, err = os.CreateTemp("", "chartpipe-*.log")
	default:
		return os.Stdout, nil
	}
	if err != nil {
		return nil, err
	}

	return logFile, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cancel); err != nil {
		var coded errors.Error
		if !errors.As(err, &coded) {
			coded = errors.New().Wrap(errors.ErrMainLoop, err)
		}
		logger.ErrorWithCode(coded).Msg("Error in main loop")
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

func run(ctx context.Context, cancel context.CancelFunc) error {
	set := series.NewSet(cfg.Points)

	src, err := newSource()
	if err != nil {
		return err
	}
	prod := producer.New(set, src, cfg.SampleInterval())

	panels, err := newPanels(set)
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	collector, err := metrics.NewService(metrics.Config{
		DBPath:       cfg.MetricsDB,
		Enabled:      cfg.Metrics,
		BatchSize:    cfg.MetricsBatchSize,
		BatchTimeout: time.Duration(cfg.MetricsBatchTimeout) * time.Second,
	})
	if err != nil {
		return errors.New().Wrap(errors.ErrInitMetrics, err)
	}
	closers = append(closers, collector.Close)

	prod.Start()
	defer prod.Stop()

	var h host
	switch cfg.Display {
	case config.DisplayTerminal:
		h = display.NewTerminal(display.TerminalConfig{
			Refresh: cfg.RefreshPeriod(),
			Strict:  cfg.StrictLocking,
		}, prod, panels...)
	default:
		h = display.NewHeadless(display.HeadlessConfig{
			Width:         cfg.Width,
			Height:        cfg.Height,
			Refresh:       cfg.RefreshPeriod(),
			SnapshotDir:   cfg.SnapshotDir,
			SnapshotEvery: cfg.SnapshotEvery,
		}, panels...)
	}

	logger.Info().
		Int("charts", len(panels)).
		Int("points", cfg.Points).
		Int("interval_ms", cfg.Interval).
		Str("source", string(cfg.Source)).
		Str("display", string(cfg.Display)).
		Bool("strict", cfg.StrictLocking).
		Msg("Starting chartpipe")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Quitting the display stops everything else.
		defer cancel()
		return h.Run(gctx)
	})
	if cfg.Metrics {
		recorder := metrics.NewRecorder(collector, snapshotProvider(prod, panels), cfg.MetricsPeriod())
		g.Go(func() error {
			return recorder.Run(gctx)
		})
	}

	return g.Wait()
}

func newSource() (producer.Source, error) {
	switch cfg.Source {
	case config.SourceGPU:
		gpu, err := producer.NewGPUSource()
		if err != nil {
			return nil, errors.New().Wrap(errors.ErrInitSource, err)
		}
		closers = append(closers, gpu.Close)
		return gpu, nil
	default:
		return producer.NewRandomSource(0), nil
	}
}

func newPanels(set *series.Set) ([]*display.Panel, error) {
	all := set.All()
	panels := make([]*display.Panel, cfg.Charts)

	for i := range panels {
		p := display.NewPanel(
			chart.WithName(fmt.Sprintf("chart%d", i+1)),
			chart.WithStrokeWidth(cfg.StrokeWidth),
			chart.WithStrict(cfg.StrictLocking),
			chart.WithFrameInterval(cfg.FrameInterval),
		)
		if err := p.Surface().Initialize(all[0], all[1], all[2], set.Points(), cfg.Interval); err != nil {
			return nil, err
		}
		panels[i] = p
	}

	return panels, nil
}

func snapshotProvider(prod *producer.Producer, panels []*display.Panel) metrics.Provider {
	return func() *metrics.Snapshot {
		s := &metrics.Snapshot{
			Timestamp: time.Now(),
			Producer: metrics.ProducerStats{
				Appends:  prod.Appends(),
				Failures: prod.Failures(),
				Running:  prod.Running(),
			},
		}
		for _, p := range panels {
			surface := p.Surface()
			st := surface.Stats()
			strict := false
			if d := surface.Driver(); d != nil {
				strict = d.Strict()
			}
			s.Charts = append(s.Charts, metrics.ChartStats{
				Chart:               surface.Name(),
				Ticks:               st.Ticks,
				Snaps:               st.Snaps,
				InterpolationFrames: st.InterpolationFrames,
				Idle:                st.Idle,
				Skipped:             st.Skipped,
				Aborted:             st.Aborted,
				Publishes:           st.Publishes,
				Paints:              surface.Paints(),
				Strict:              strict,
			})
		}
		return s
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			var coded errors.Error
			if !errors.As(err, &coded) {
				coded = errors.New().Wrap(errors.ErrShutdownFailed, err)
			}
			logger.ErrorWithCode(coded).Msg("Failed to release resource")
		}
	}
	logger.Info().Msg("Exiting...")
	if logFile != nil {
		logFile.Close()
	}
}
