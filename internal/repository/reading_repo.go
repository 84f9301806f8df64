package repository

import (
	"context"
	"database/sql"
	"time"

	"heater_bridge"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `
		INSERT INTO heater_readings (recorded_at, power, temp_c, target_c)
		VALUES (?, ?, ?, ?)
	`

	selectRecentReadingsSQL = `
		SELECT id, recorded_at, power, temp_c, target_c
		FROM heater_readings
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`
)

// Append stores one telemetry sample. RecordedAt defaults to now (UTC).
func (r *ReadingSQLite) Append(ctx context.Context, rd heater_bridge.Reading) error {
	ts := rd.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		ts,
		rd.IsOn,
		rd.CurrentTempC,
		rd.TargetTempC,
	)
	return err
}

// ListRecent returns up to limit samples, newest first.
func (r *ReadingSQLite) ListRecent(ctx context.Context, limit int) ([]heater_bridge.Reading, error) {
	rows, err := r.db.QueryContext(ctx, selectRecentReadingsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]heater_bridge.Reading, 0, limit)
	for rows.Next() {
		var rd heater_bridge.Reading
		if err := rows.Scan(&rd.ID, &rd.RecordedAt, &rd.IsOn, &rd.CurrentTempC, &rd.TargetTempC); err != nil {
			return nil, err
		}
		rd.RecordedAt = rd.RecordedAt.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
