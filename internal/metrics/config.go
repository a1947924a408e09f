package metrics

import (
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultDBPath       = "chartpipe-metrics.db"
	defaultBatchSize    = 12
	defaultBatchTimeout = 30 * time.Second
)

type Config struct {
	DBPath          string
	Enabled         bool
	BatchSize       int
	BatchTimeout    time.Duration
	BackupOnMigrate bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		Enabled:      false,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{c.BatchSize, c.BatchTimeout})
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
