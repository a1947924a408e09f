package metrics

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []*Snapshot
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
	closeErr      error
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	backupDir := filepath.Join(filepath.Dir(cfg.DBPath), "backups")
	if err := ValidateAndUpdateSchema(db, backupDir, cfg.BackupOnMigrate, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("Metrics repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]*Snapshot, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchSize > 0 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

// Record buffers snapshot and flushes once the batch is full. Without
// batching every snapshot is written immediately.
func (r *repository) Record(snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, snapshot)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

// Close flushes pending snapshots and closes the database. Close is
// idempotent.
func (r *repository) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.close()
	})
	return r.closeErr
}

func (r *repository) close() error {
	close(r.shutdownChan)
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}
	<-r.flushDoneChan

	r.mu.Lock()
	err := r.flush()
	r.mu.Unlock()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to flush metrics on close")
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("Metrics repository closed gracefully")

	return nil
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			_ = r.flush()
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}

// flush must be called with r.mu held.
func (r *repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	rollback := func(cause error) error {
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, cause)
	}

	producerStmt, err := tx.Prepare(insertProducerSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		return rollback(err)
	}
	defer producerStmt.Close()

	chartStmt, err := tx.Prepare(insertChartSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		return rollback(err)
	}
	defer chartStmt.Close()

	for _, snapshot := range r.buffer {
		ts := snapshot.Timestamp.UnixMilli()

		if _, err := producerStmt.Exec(
			ts,
			int64(snapshot.Producer.Appends),
			int64(snapshot.Producer.Failures),
			boolToInt(snapshot.Producer.Running),
		); err != nil {
			r.logger.Error().Err(err).Msg("Failed to execute insert")
			return rollback(err)
		}

		for _, c := range snapshot.Charts {
			if _, err := chartStmt.Exec(
				ts, c.Chart,
				int64(c.Ticks),
				int64(c.Snaps),
				int64(c.InterpolationFrames),
				int64(c.Idle),
				int64(c.Skipped),
				int64(c.Aborted),
				int64(c.Publishes),
				int64(c.Paints),
				boolToInt(c.Strict),
			); err != nil {
				r.logger.Error().Err(err).Str("chart", c.Chart).Msg("Failed to execute insert")
				return rollback(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(r.buffer)).Msg("Flushed metrics to database")
	r.buffer = r.buffer[:0]

	return nil
}
