package services

import (
	"context"
	"time"
)

// LockOptions controls how OrderLockSvc.Lock behaves when the order is already locked.
type LockOptions struct {
	Retries    int
	RetryDelay time.Duration
}

// LockOption configures a single Lock call.
type LockOption func(*LockOptions)

// WithRetries makes Lock wait delay and try again up to retries times.
func WithRetries(retries int, delay time.Duration) LockOption {
	return func(o *LockOptions) {
		o.Retries = retries
		o.RetryDelay = delay
	}
}

// OrderLockSvc serializes payment processing of one order across instances.
type OrderLockSvc interface {
	// Lock runs operation while holding the persisted lock of the order and always
	// releases it afterwards. A held lock fails with ErrConcurrency once retries are exhausted.
	Lock(ctx context.Context, orderID string, operation func(ctx context.Context) error, opts ...LockOption) error

	// ClearExpiredLocks releases stale locks and returns how many were cleared.
	ClearExpiredLocks(ctx context.Context) (int64, error)
}
