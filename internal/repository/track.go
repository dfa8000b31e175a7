package repository

import (
	"context"
	"time"

	"radarmap/internal/model"
)

// TrackRepository persists peer positions. Strictly persistence operations.
type TrackRepository interface {
	// Append stores all points atomically. An empty slice is a no-op.
	Append(ctx context.Context, points []model.TrackPoint) error

	// ListByPeer returns a peer's points, newest first, with the total row count.
	ListByPeer(ctx context.Context, peerID string, pq PageQuery) (*PageResult[model.TrackPoint], error)

	// DeleteBefore removes points recorded before t and returns how many were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}
