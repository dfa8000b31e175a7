package radar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"radarmap/internal/model"
)

// Source is the node API the poller reads from. *Client implements it.
type Source interface {
	Status(ctx context.Context) error
	Peers(ctx context.Context) (*model.PeerReport, error)
}

// Sink receives what the poller learns.
type Sink interface {
	Ingest(ctx context.Context, report *model.PeerReport) error
	MarkOffline(err error)
}

// Poller follows the node: it waits for a status answer, then polls peers
// until the node stops answering, then goes back to waiting.
type Poller struct {
	source        Source
	sink          Sink
	logger        *slog.Logger
	metrics       *Metrics
	pollInterval  time.Duration
	retryInterval time.Duration

	active bool
}

// NewPoller creates a poller. metrics may be nil.
func NewPoller(source Source, sink Sink, logger *slog.Logger, metrics *Metrics, pollInterval, retryInterval time.Duration) *Poller {
	return &Poller{
		source:        source,
		sink:          sink,
		logger:        logger.With("component", "radar.poller"),
		metrics:       metrics,
		pollInterval:  pollInterval,
		retryInterval: retryInterval,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("radar poller started",
		"poll_interval", p.pollInterval,
		"retry_interval", p.retryInterval,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("radar poller stopping")
			return nil
		case <-timer.C:
			timer.Reset(p.step(ctx))
		}
	}
}

// step performs one status check or peer poll and returns the delay before the next one.
func (p *Poller) step(ctx context.Context) time.Duration {
	if !p.active {
		if err := p.source.Status(ctx); err != nil {
			if ctx.Err() != nil {
				return 0
			}
			p.logger.Debug("radar status check failed", "error", err)
			p.metrics.SetUp(false)
			p.sink.MarkOffline(err)
			return p.retryInterval
		}
		p.active = true
		p.metrics.SetUp(true)
		p.logger.Info("radar is active, starting peer collection")
		return 0
	}

	report, err := p.source.Peers(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		var statusErr *StatusError
		switch {
		case errors.Is(err, ErrMalformedReport):
			p.metrics.PollError("malformed")
			p.logger.Warn("skipping malformed peer report", "error", err)
			return p.pollInterval
		case errors.As(err, &statusErr):
			p.metrics.PollError("status")
			p.logger.Warn("peer poll rejected", "status", statusErr.Code)
			return p.pollInterval
		default:
			p.metrics.PollError("transport")
			p.metrics.SetUp(false)
			p.logger.Warn("radar connection lost", "error", err)
			p.active = false
			p.sink.MarkOffline(err)
			return p.retryInterval
		}
	}

	if err := p.sink.Ingest(ctx, report); err != nil {
		p.logger.Error("ingest peer report", "error", err)
	}
	p.logger.Debug("peer report",
		"my_id", report.MyID,
		"count", report.Count,
		"count_active", report.CountActive,
	)
	return p.pollInterval
}
