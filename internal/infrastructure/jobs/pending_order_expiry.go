package jobs

import (
	"context"
	"time"

	"digimarket.backend/pkg/logger"
	"go.uber.org/zap"
)

type staleOrderRepository interface {
	FailStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// PendingOrderExpiryJob fails checkouts that were never paid
type PendingOrderExpiryJob struct {
	repo     staleOrderRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewPendingOrderExpiryJob(repo staleOrderRepository, ttl, interval time.Duration) *PendingOrderExpiryJob {
	return &PendingOrderExpiryJob{
		repo:     repo,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PendingOrderExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting pending order expiry job", zap.Duration("ttl", j.ttl), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Pending order expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Pending order expiry job stopped")
			return
		case <-ticker.C:
			j.processStaleOrders(ctx)
		}
	}
}

func (j *PendingOrderExpiryJob) Stop() {
	close(j.stop)
}

func (j *PendingOrderExpiryJob) processStaleOrders(ctx context.Context) {
	cutoff := j.now().Add(-j.ttl)
	failed, err := j.repo.FailStalePending(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "Error failing stale pending orders", zap.Error(err))
		return
	}
	if failed == 0 {
		return
	}
	logger.Info(ctx, "Failed stale pending orders", zap.Int64("count", failed), zap.Time("cutoff", cutoff))
}
