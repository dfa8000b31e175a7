package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"radarmap/internal/model"
	"radarmap/internal/radar"
	"radarmap/internal/repository"
	"radarmap/internal/storage"
)

var (
	ErrPeerIDRequired   = errors.New("peer id is required")
	ErrNotFound         = errors.New("not found")
	ErrHistoryDisabled  = errors.New("track history is not configured")
	ErrArchiveDisabled  = errors.New("snapshot archive is not configured")
	ErrNothingToArchive = errors.New("no radar report received yet")
)

const (
	defaultTrackLimit = 100
	maxTrackLimit     = 1000
	presignExpiry     = 15 * time.Minute
)

// TrackResult is the service-level DTO for a paginated peer track.
type TrackResult struct {
	Items []model.TrackPoint `json:"data"`
	Total int                `json:"total"`
}

// RadarService holds the live radar picture and its optional history and archive.
type RadarService interface {
	// Ingest replaces the current snapshot with report and records track points when history is enabled.
	// The snapshot is updated even when recording fails.
	Ingest(ctx context.Context, report *model.PeerReport) error

	// MarkOffline flags the node as unreachable and keeps the last known peers.
	MarkOffline(err error)

	// Snapshot returns a copy of the current radar state.
	Snapshot() model.Snapshot

	// Track returns a peer's recorded positions, newest first.
	Track(ctx context.Context, peerID string, limit, offset int) (*TrackResult, error)

	// Prune deletes track points older than the retention window.
	Prune(ctx context.Context) (int64, error)

	// Archive uploads the current snapshot as JSON and returns its object key.
	Archive(ctx context.Context) (string, error)

	// LatestArchiveURL returns a presigned download URL for the last archived snapshot.
	LatestArchiveURL(ctx context.Context) (string, error)
}

// Options wires the optional collaborators. Nil Repo or Store disables history or archiving.
type Options struct {
	Repo      repository.TrackRepository
	Store     storage.Storage
	Metrics   *radar.Metrics
	Retention time.Duration
	Now       func() time.Time
}

type radarService struct {
	repo      repository.TrackRepository
	store     storage.Storage
	metrics   *radar.Metrics
	retention time.Duration
	now       func() time.Time
	tracer    trace.Tracer

	mu          sync.RWMutex
	snap        model.Snapshot
	received    bool
	lastArchive string
}

var _ radar.Sink = (*radarService)(nil)

// NewRadarService constructs a new RadarService.
func NewRadarService(opts Options) RadarService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	return &radarService{
		repo:      opts.Repo,
		store:     opts.Store,
		metrics:   opts.Metrics,
		retention: opts.Retention,
		now:       opts.Now,
		tracer:    otel.Tracer("radarmap/internal/service"),
		snap:      model.Snapshot{Peers: []model.Peer{}},
	}
}

func (s *radarService) Ingest(ctx context.Context, report *model.PeerReport) error {
	if report == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "radar.ingest", trace.WithAttributes(
		attribute.String("radar.my_id", report.MyID),
		attribute.Int("radar.peers", len(report.Peers)),
	))
	defer span.End()

	now := s.now().UTC()
	peers := make([]model.Peer, len(report.Peers))
	copy(peers, report.Peers)

	s.mu.Lock()
	s.snap = model.Snapshot{
		Online:      true,
		MyID:        report.MyID,
		Count:       report.Count,
		CountActive: report.CountActive,
		Peers:       peers,
		UpdatedAt:   &now,
	}
	s.received = true
	s.mu.Unlock()

	s.metrics.ObservePeers(report.Count, report.CountActive)

	if s.repo == nil || len(peers) == 0 {
		return nil
	}

	points := make([]model.TrackPoint, 0, len(peers))
	for _, p := range peers {
		// age is how long ago the node last heard from the peer
		seen := now.Add(-time.Duration(p.Age) * time.Millisecond)
		points = append(points, model.TrackPointFromPeer(p, seen))
	}
	if err := s.repo.Append(ctx, points); err != nil {
		span.RecordError(err)
		return fmt.Errorf("record track points: %w", err)
	}
	return nil
}

func (s *radarService) MarkOffline(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Online = false
	if err != nil {
		s.snap.LastError = err.Error()
	}
}

func (s *radarService) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Peers = make([]model.Peer, len(s.snap.Peers))
	copy(out.Peers, s.snap.Peers)
	if s.snap.UpdatedAt != nil {
		t := *s.snap.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func (s *radarService) Track(ctx context.Context, peerID string, limit, offset int) (*TrackResult, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	if peerID == "" {
		return nil, ErrPeerIDRequired
	}
	if limit <= 0 {
		limit = defaultTrackLimit
	}
	if limit > maxTrackLimit {
		limit = maxTrackLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByPeer(ctx, peerID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &TrackResult{Items: res.Items, Total: res.Total}, nil
}

func (s *radarService) Prune(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, ErrHistoryDisabled
	}
	n, err := s.repo.DeleteBefore(ctx, s.now().UTC().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("prune track points: %w", err)
	}
	return n, nil
}

func (s *radarService) Archive(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", ErrArchiveDisabled
	}

	s.mu.RLock()
	received := s.received
	s.mu.RUnlock()
	if !received {
		return "", ErrNothingToArchive
	}

	ctx, span := s.tracer.Start(ctx, "radar.archive")
	defer span.End()

	snap := s.Snapshot()
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", s.now().UTC().Format("2006/01/02"), uuid.NewString())
	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"radar-id": snap.MyID},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	s.mu.Lock()
	s.lastArchive = info.Key
	s.mu.Unlock()
	return info.Key, nil
}

func (s *radarService) LatestArchiveURL(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", ErrArchiveDisabled
	}
	s.mu.RLock()
	key := s.lastArchive
	s.mu.RUnlock()
	if key == "" {
		return "", ErrNotFound
	}
	return s.store.PresignGet(ctx, key, presignExpiry)
}
