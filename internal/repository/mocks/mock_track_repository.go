package mocks

import (
	"context"
	"time"

	"radarmap/internal/model"
	"radarmap/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTrackRepository struct {
	mock.Mock
}

func (m *MockTrackRepository) Append(ctx context.Context, points []model.TrackPoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

func (m *MockTrackRepository) ListByPeer(ctx context.Context, peerID string, pq repository.PageQuery) (*repository.PageResult[model.TrackPoint], error) {
	args := m.Called(ctx, peerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.TrackPoint]), args.Error(1)
}

func (m *MockTrackRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}
