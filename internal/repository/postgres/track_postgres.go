package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"radarmap/internal/model"
	"radarmap/internal/repository"
)

// TrackPostgres is a PostgreSQL implementation of repository.TrackRepository.
type TrackPostgres struct {
	db *sql.DB
}

// NewTrackPostgres creates a new TrackPostgres repository.
func NewTrackPostgres(db *sql.DB) *TrackPostgres {
	return &TrackPostgres{db: db}
}

var _ repository.TrackRepository = (*TrackPostgres)(nil)

// Append inserts all points inside a single transaction.
func (r *TrackPostgres) Append(ctx context.Context, points []model.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
		INSERT INTO track_points (peer_id, name, lat, lon, alt, ground_speed, ground_course, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx,
			p.PeerID,
			p.Name,
			p.Lat,
			p.Lon,
			p.Alt,
			p.GroundSpeed,
			p.GroundCourse,
			p.RecordedAt,
		); err != nil {
			return fmt.Errorf("insert track point %s: %w", p.PeerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByPeer returns a page of a peer's track, newest first, and the total count.
func (r *TrackPostgres) ListByPeer(ctx context.Context, peerID string, pq repository.PageQuery) (*repository.PageResult[model.TrackPoint], error) {
	const qCount = `SELECT COUNT(*) FROM track_points WHERE peer_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, peerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT peer_id, name, lat, lon, alt, ground_speed, ground_course, recorded_at
		FROM track_points
		WHERE peer_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, peerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TrackPoint, 0)
	for rows.Next() {
		var p model.TrackPoint
		if err := rows.Scan(
			&p.PeerID,
			&p.Name,
			&p.Lat,
			&p.Lon,
			&p.Alt,
			&p.GroundSpeed,
			&p.GroundCourse,
			&p.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.TrackPoint]{
		Items: items,
		Total: total,
	}, nil
}

// DeleteBefore removes points older than t.
func (r *TrackPostgres) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	const q = `DELETE FROM track_points WHERE recorded_at < $1`
	res, err := r.db.ExecContext(ctx, q, t)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
