package metrics

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAt(ts time.Time, charts ...string) *Snapshot {
	s := &Snapshot{
		Timestamp: ts,
		Producer:  ProducerStats{Appends: 10, Failures: 1, Running: true},
	}
	for i, name := range charts {
		s.Charts = append(s.Charts, ChartStats{
			Chart:     name,
			Ticks:     uint64(100 + i),
			Snaps:     10,
			Publishes: 60,
			Paints:    58,
			Strict:    i%2 == 1,
		})
	}
	return s
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestDisabledServiceIsNoop(t *testing.T) {
	c, err := NewService(Config{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, c.Record(context.Background(), &Snapshot{}))
	assert.NoError(t, c.Close())
}

func TestValidate(t *testing.T) {
	_, err := NewService(Config{Enabled: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.New().New(ErrInvalidDBPath)))

	err = Config{Enabled: true, DBPath: "x.db", BatchSize: -1}.Validate()
	assert.Equal(t, ErrInvalidConfig, errors.CodeOf(err))

	assert.NoError(t, DefaultConfig().Validate())
}

func TestServiceBatchesAndFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.db")
	c, err := NewService(Config{
		DBPath:       path,
		Enabled:      true,
		BatchSize:    2,
		BatchTimeout: time.Hour,
	})
	require.NoError(t, err)

	base := time.UnixMilli(1_700_000_000_000)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Record(ctx, snapshotAt(base.Add(time.Duration(i)*time.Second), "a", "b")))
	}

	assert.Equal(t, 2, countRows(t, path, "producer_stats"), "first batch flushed")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, 3, countRows(t, path, "producer_stats"))
	assert.Equal(t, 6, countRows(t, path, "chart_stats"))
}

func TestRecordNilSnapshot(t *testing.T) {
	c, err := NewService(Config{DBPath: filepath.Join(t.TempDir(), "m.db"), Enabled: true})
	require.NoError(t, err)
	defer c.Close()

	err = c.Record(context.Background(), nil)
	assert.Equal(t, ErrInvalidMetrics, errors.CodeOf(err))
}

func TestRecordCanceledContext(t *testing.T) {
	c, err := NewService(Config{DBPath: filepath.Join(t.TempDir(), "m.db"), Enabled: true})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Record(ctx, snapshotAt(time.Now()))
	assert.Equal(t, ErrOperationTimeout, errors.CodeOf(err))
}

func TestSchemaMismatchRecreatesWithBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions VALUES (99, datetime('now'));
		CREATE TABLE chart_stats (legacy INTEGER);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err := NewRepository(Config{DBPath: path, BackupOnMigrate: true}, logger.With("metrics"))
	require.NoError(t, err)
	require.NoError(t, repo.Record(snapshotAt(time.Now(), "a")))
	require.NoError(t, repo.Close())

	assert.Equal(t, 1, countRows(t, path, "chart_stats"))

	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	db, err = sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

type memCollector struct {
	snapshots chan *Snapshot
}

func (m *memCollector) Record(_ context.Context, s *Snapshot) error {
	select {
	case m.snapshots <- s:
	default:
	}
	return nil
}

func (m *memCollector) Close() error { return nil }

func TestRecorderRun(t *testing.T) {
	mem := &memCollector{snapshots: make(chan *Snapshot, 100)}
	r := NewRecorder(mem, func() *Snapshot { return &Snapshot{} }, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	first := <-mem.snapshots
	assert.False(t, first.Timestamp.IsZero(), "recorder stamps snapshots")

	cancel()
	require.NoError(t, <-done)
}
