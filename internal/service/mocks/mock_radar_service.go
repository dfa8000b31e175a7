package mocks

import (
	"context"

	"radarmap/internal/model"
	"radarmap/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockRadarService struct {
	mock.Mock
}

func (m *MockRadarService) Ingest(ctx context.Context, report *model.PeerReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRadarService) MarkOffline(err error) {
	m.Called(err)
}

func (m *MockRadarService) Snapshot() model.Snapshot {
	args := m.Called()
	return args.Get(0).(model.Snapshot)
}

func (m *MockRadarService) Track(ctx context.Context, peerID string, limit, offset int) (*service.TrackResult, error) {
	args := m.Called(ctx, peerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TrackResult), args.Error(1)
}

func (m *MockRadarService) Prune(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRadarService) Archive(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRadarService) LatestArchiveURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
