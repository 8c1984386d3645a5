package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ayo6706/bankcards/internal/observability"
	"github.com/ayo6706/bankcards/internal/service"
	"go.uber.org/zap"
)

// ExpirationWorker runs the card expiration sweep on a fixed schedule.
type ExpirationWorker struct {
	svc      *service.LifecycleService
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewExpirationWorker constructs a worker with the default daily interval.
func NewExpirationWorker(svc *service.LifecycleService) *ExpirationWorker {
	return &ExpirationWorker{
		svc:      svc,
		interval: 24 * time.Hour,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval updates the run interval.
func (w *ExpirationWorker) WithInterval(interval time.Duration) *ExpirationWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks and runs the sweep at the configured interval.
func (w *ExpirationWorker) Start(ctx context.Context) {
	zap.L().Info("expiration worker starting", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately at startup.
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("expiration worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("expiration worker stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop stops the running worker loop.
func (w *ExpirationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *ExpirationWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *ExpirationWorker) runOnce(ctx context.Context) {
	if _, err := w.svc.ExpireOverdue(ctx, time.Now()); err != nil {
		observability.IncrementWorkerRun("expiration", "failed")
		zap.L().Error("expiration sweep failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("expiration", "success")
}
