package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"vantron/internal/collector"
)

// Fan and frequency are NULL when the cpu callback failed, watts when the
// power callback failed. Rails of a cycle live in a child table.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS read_cycles (
  cycle_id      BIGINT PRIMARY KEY,
  hostname      VARCHAR NOT NULL,
  collected_at  TIMESTAMP NOT NULL,
  fan_speed_rpm BIGINT,
  cpu_freq_khz  BIGINT,
  power_watts   DOUBLE,
  cpu_error     VARCHAR,
  power_error   VARCHAR
);

CREATE TABLE IF NOT EXISTS rail_samples (
  cycle_id  BIGINT NOT NULL,
  rail      VARCHAR NOT NULL,
  voltage   DOUBLE NOT NULL,
  current   DOUBLE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_read_cycles_host_time ON read_cycles(hostname, collected_at);
`

type Repo struct {
	db        *sql.DB
	retention time.Duration
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// WithRetention makes every insert drop cycles older than d, measured from
// the inserted cycle. Zero keeps everything.
func (r *Repo) WithRetention(d time.Duration) *Repo {
	r.retention = d
	return r
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, SchemaSQL)
	return err
}

var lastID atomic.Int64

// NewID generates a unique, increasing ID (time-based).
func NewID() int64 {
	id := time.Now().UnixNano()
	for {
		last := lastID.Load()
		if id <= last {
			id = last + 1
		}
		if lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

// InsertReadings stores one read cycle with its rail samples and returns the
// new cycle id.
func (r *Repo) InsertReadings(ctx context.Context, rd *collector.Readings) (int64, error) {
	if rd == nil {
		return 0, errors.New("readings required")
	}
	if rd.Host == "" {
		return 0, errors.New("readings without host")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var fan, freq sql.NullInt64
	if rd.CPUErr == nil || rd.FanSent {
		fan = sql.NullInt64{Int64: rd.FanSpeedRPM, Valid: true}
	}
	if rd.CPUErr == nil {
		freq = sql.NullInt64{Int64: rd.FrequencyKHz, Valid: true}
	}
	var watts sql.NullFloat64
	if rd.PowerErr == nil {
		watts = sql.NullFloat64{Float64: rd.Watts, Valid: true}
	}

	id := NewID()
	collectedAt := rd.Time
	if collectedAt.IsZero() {
		collectedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO read_cycles(cycle_id, hostname, collected_at, fan_speed_rpm, cpu_freq_khz, power_watts, cpu_error, power_error)
		VALUES(?,?,?,?,?,?,?,?)
	`, id, rd.Host, collectedAt.UTC(), fan, freq, watts, nullErr(rd.CPUErr), nullErr(rd.PowerErr))
	if err != nil {
		return 0, fmt.Errorf("insert read cycle: %w", err)
	}

	for _, s := range rd.Samples {
		if !s.Complete() {
			continue
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO rail_samples(cycle_id, rail, voltage, current) VALUES(?,?,?,?)`,
			id, s.Name, *s.Voltage, *s.Current,
		)
		if err != nil {
			return 0, fmt.Errorf("insert rail %s: %w", s.Name, err)
		}
	}

	if r.retention > 0 {
		if _, err := prune(ctx, tx, collectedAt.Add(-r.retention)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Prune deletes cycles collected before cutoff and returns how many went.
func (r *Repo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := prune(ctx, tx, cutoff)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func prune(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	_, err := tx.ExecContext(ctx, `
		DELETE FROM rail_samples
		WHERE cycle_id IN (SELECT cycle_id FROM read_cycles WHERE collected_at < ?)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune rail samples: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM read_cycles WHERE collected_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune read cycles: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullErr(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}
