package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/metrics"
)

// DefaultOrderLockStaleAfter is how long a lock is honoured before the sweep may release it.
const DefaultOrderLockStaleAfter = 5 * time.Minute

// orderLockService implements the persisted, cooperative order lock. The lock flag is
// committed on its own, so no storage transaction stays open while a provider is called.
type orderLockService struct {
	BaseService
	orderRepo  portsrepo.OrderLocker
	staleAfter time.Duration
	metrics    *metrics.Registry
	now        func() time.Time
}

// OrderLockOption is a functional option for configuring the order lock service
type OrderLockOption func(*orderLockService)

// WithOrderLockMetrics records lock attempts and sweeps in reg.
func WithOrderLockMetrics(reg *metrics.Registry) OrderLockOption {
	return func(s *orderLockService) {
		s.metrics = reg
	}
}

// WithOrderLockClock overrides the time source.
func WithOrderLockClock(now func() time.Time) OrderLockOption {
	return func(s *orderLockService) {
		s.now = now
	}
}

// NewOrderLockService creates the order lock. A non-positive staleAfter uses the default.
func NewOrderLockService(orderRepo portsrepo.OrderLocker, staleAfter time.Duration, options ...OrderLockOption) portssvc.OrderLockSvc {
	if staleAfter <= 0 {
		staleAfter = DefaultOrderLockStaleAfter
	}
	svc := &orderLockService{orderRepo: orderRepo, staleAfter: staleAfter, now: time.Now}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OrderLockSvc = (*orderLockService)(nil)

// Lock acquires the order lock, runs operation and releases the lock whatever the outcome.
func (s *orderLockService) Lock(ctx context.Context, orderID string, operation func(ctx context.Context) error, opts ...portssvc.LockOption) error {
	options := portssvc.LockOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := s.GetLogger(ctx).With(slog.String("order_id", orderID))

	var lockedAt time.Time
	for retries := options.Retries; ; retries-- {
		// Storage keeps microseconds, release compares against the stored value.
		now := s.now().UTC().Truncate(time.Microsecond)
		acquired, err := s.orderRepo.AcquireLock(ctx, orderID, now, now.Add(-s.staleAfter))
		if err != nil {
			return err
		}
		if acquired {
			lockedAt = now
			s.metrics.OrderLockAttempt("acquired")
			logger.Debug("Order lock acquired")
			break
		}

		s.metrics.OrderLockAttempt("contended")
		if retries <= 0 {
			logger.Warn("Order is already being processed")
			return apperrors.NewConcurrencyError("this order is already being processed")
		}

		logger.Debug("Order is locked, retrying", slog.Int("retries_left", retries), slog.Duration("delay", options.RetryDelay))
		select {
		case <-ctx.Done():
			return apperrors.NewConcurrencyError(fmt.Sprintf("this order is already being processed: gave up waiting: %v", ctx.Err()))
		case <-time.After(options.RetryDelay):
		}
	}

	defer func() {
		// Release even when the caller's context was cancelled mid-operation.
		released, err := s.orderRepo.ReleaseLock(context.WithoutCancel(ctx), orderID, lockedAt)
		if err != nil {
			logger.Error("Failed to release order lock, it will be cleared by the stale lock sweep", slog.String("error", err.Error()))
			return
		}
		if !released {
			logger.Warn("Order lock was swept or taken over before release", slog.Time("locked_at", lockedAt))
			return
		}
		logger.Debug("Order lock released")
	}()

	return operation(ctx)
}

// ClearExpiredLocks releases every lock older than the staleness threshold.
func (s *orderLockService) ClearExpiredLocks(ctx context.Context) (int64, error) {
	staleBefore := s.now().UTC().Add(-s.staleAfter)
	cleared, err := s.orderRepo.ClearExpiredLocks(ctx, staleBefore)
	if err != nil {
		s.LogError(ctx, err, "Failed to clear expired order locks")
		return 0, err
	}
	if cleared > 0 {
		s.LogInfo(ctx, "Cleared expired order locks", slog.Int64("count", cleared), slog.Time("stale_before", staleBefore))
	}
	s.metrics.OrderLocksCleared(cleared)
	return cleared, nil
}
