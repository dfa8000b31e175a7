package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, logger, "test", 5*time.Millisecond, func(context.Context) error {
			// failures must not stop the loop
			if calls.Add(1)%2 == 0 {
				return errors.New("boom")
			}
			return nil
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 4 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestEvery_NonPositiveInterval(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(context.Background(), logger, "test", time.Duration(12)/24, func(context.Context) error {
			calls.Add(1)
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker should return immediately")
	}
	assert.Zero(t, calls.Load())
}
