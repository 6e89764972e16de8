package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CycleSummary is one stored read cycle. Nil fields belong to a failed
// callback whose error is set instead.
type CycleSummary struct {
	CycleID     int64     `json:"cycle_id"`
	Hostname    string    `json:"hostname"`
	CollectedAt time.Time `json:"collected_at"`
	FanSpeedRPM *int64    `json:"fan_speed_rpm,omitempty"`
	CPUFreqKHz  *int64    `json:"cpu_freq_khz,omitempty"`
	PowerWatts  *float64  `json:"power_watts,omitempty"`
	CPUError    string    `json:"cpu_error,omitempty"`
	PowerError  string    `json:"power_error,omitempty"`
}

// PowerStats aggregates the successful power readings of a window.
type PowerStats struct {
	Hostname string  `json:"hostname"`
	Cycles   int64   `json:"cycles"`
	MinWatts float64 `json:"min_watts"`
	AvgWatts float64 `json:"avg_watts"`
	MaxWatts float64 `json:"max_watts"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100 // Safety limit
	}
	return limit
}

// QueryCycles retrieves the most recent cycles, newest first, optionally
// filtered by hostname.
func (r *Repo) QueryCycles(ctx context.Context, hostname string, limit int) ([]CycleSummary, error) {
	query := `
		SELECT
			cycle_id,
			hostname,
			collected_at,
			fan_speed_rpm,
			cpu_freq_khz,
			power_watts,
			COALESCE(cpu_error, '') AS cpu_error,
			COALESCE(power_error, '') AS power_error
		FROM read_cycles
		WHERE 1=1
	`

	args := []any{}
	if hostname != "" {
		query += " AND hostname = ?"
		args = append(args, hostname)
	}

	query += " ORDER BY collected_at DESC, cycle_id DESC LIMIT ?"
	args = append(args, clampLimit(limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query read cycles failed: %w", err)
	}
	defer rows.Close()

	cycles := []CycleSummary{} // Initialize as empty slice, not nil
	for rows.Next() {
		var c CycleSummary
		var fan, freq sql.NullInt64
		var watts sql.NullFloat64

		if err := rows.Scan(
			&c.CycleID,
			&c.Hostname,
			&c.CollectedAt,
			&fan,
			&freq,
			&watts,
			&c.CPUError,
			&c.PowerError,
		); err != nil {
			return nil, fmt.Errorf("scan read cycle failed: %w", err)
		}

		if fan.Valid {
			c.FanSpeedRPM = &fan.Int64
		}
		if freq.Valid {
			c.CPUFreqKHz = &freq.Int64
		}
		if watts.Valid {
			c.PowerWatts = &watts.Float64
		}

		cycles = append(cycles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return cycles, nil
}

// PowerSince summarizes power readings collected at or after since.
func (r *Repo) PowerSince(ctx context.Context, hostname string, since time.Time) (PowerStats, error) {
	stats := PowerStats{Hostname: hostname}
	var minW, avgW, maxW sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(power_watts), MIN(power_watts), AVG(power_watts), MAX(power_watts)
		FROM read_cycles
		WHERE hostname = ? AND collected_at >= ?
	`, hostname, since.UTC()).Scan(&stats.Cycles, &minW, &avgW, &maxW)
	if err != nil {
		return PowerStats{}, fmt.Errorf("query power stats failed: %w", err)
	}

	stats.MinWatts, stats.AvgWatts, stats.MaxWatts = minW.Float64, avgW.Float64, maxW.Float64
	return stats, nil
}

// RailSamples returns the rails stored with a cycle.
func (r *Repo) RailSamples(ctx context.Context, cycleID int64) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rail, voltage * current FROM rail_samples WHERE cycle_id = ? ORDER BY rail`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query rails failed: %w", err)
	}
	defer rows.Close()

	rails := make(map[string]float64)
	for rows.Next() {
		var name string
		var watts float64
		if err := rows.Scan(&name, &watts); err != nil {
			return nil, fmt.Errorf("scan rail failed: %w", err)
		}
		rails[name] = watts
	}
	return rails, rows.Err()
}
