package metrics

import (
	"database/sql"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS producer_stats (
	       timestamp INTEGER PRIMARY KEY,
	       appends   INTEGER NOT NULL CHECK (typeof(appends) = 'integer'),
	       failures  INTEGER NOT NULL CHECK (typeof(failures) = 'integer'),
	       running   INTEGER NOT NULL CHECK (running IN (0, 1))
	   );
	   CREATE TABLE IF NOT EXISTS chart_stats (
	       timestamp            INTEGER NOT NULL,
	       chart                TEXT NOT NULL,
	       ticks                INTEGER NOT NULL CHECK (typeof(ticks) = 'integer'),
	       snaps                INTEGER NOT NULL CHECK (typeof(snaps) = 'integer'),
	       interpolation_frames INTEGER NOT NULL CHECK (typeof(interpolation_frames) = 'integer'),
	       idle                 INTEGER NOT NULL CHECK (typeof(idle) = 'integer'),
	       skipped              INTEGER NOT NULL CHECK (typeof(skipped) = 'integer'),
	       aborted              INTEGER NOT NULL CHECK (typeof(aborted) = 'integer'),
	       publishes            INTEGER NOT NULL CHECK (typeof(publishes) = 'integer'),
	       paints               INTEGER NOT NULL CHECK (typeof(paints) = 'integer'),
	       strict               INTEGER NOT NULL CHECK (strict IN (0, 1)),
	       PRIMARY KEY (timestamp, chart)
	   );`

	insertProducerSQL = `
    INSERT OR REPLACE INTO producer_stats (
        timestamp, appends, failures, running
    ) VALUES (?, ?, ?, ?)`

	insertChartSQL = `
    INSERT OR REPLACE INTO chart_stats (
        timestamp, chart,
        ticks, snaps, interpolation_frames, idle,
        skipped, aborted, publishes, paints, strict
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

var schemaTables = []string{"chart_stats", "producer_stats", "schema_versions"}

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, zero for an empty
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
