package cron

import (
	"context"
	"log/slog"

	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/jobs"
)

// OrderLockSweepJob releases order locks left behind by crashed payment attempts.
type OrderLockSweepJob struct {
	Locks portssvc.OrderLockSvc
}

var _ jobs.Job = (*OrderLockSweepJob)(nil)

func (j *OrderLockSweepJob) Name() string { return "order_lock_sweep" }

func (j *OrderLockSweepJob) Process(ctx context.Context) error {
	cleared, err := j.Locks.ClearExpiredLocks(ctx)
	if err != nil {
		return err
	}
	if cleared > 0 {
		slog.InfoContext(ctx, "Cleared expired order locks", slog.Int64("cleared", cleared))
	}
	return nil
}
