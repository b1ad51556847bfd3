package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// OrderReader defines read operations for orders
type OrderReader interface {
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
}

// OrderLocker persists the cooperative payment lock of an order.
type OrderLocker interface {
	// AcquireLock sets data.lockedAt to now when the order is unlocked or its lock is older
	// than staleBefore. It reports whether the lock was taken; ErrNotFound means no such order.
	AcquireLock(ctx context.Context, orderID string, now, staleBefore time.Time) (bool, error)

	// ReleaseLock clears data.lockedAt when it still holds lockedAt, the value written by
	// the caller's AcquireLock. It reports false when the lock was swept or taken over.
	ReleaseLock(ctx context.Context, orderID string, lockedAt time.Time) (bool, error)

	// ClearExpiredLocks releases every lock older than staleBefore, appending the stale
	// timestamp to data.deadlocks, and returns how many were cleared.
	ClearExpiredLocks(ctx context.Context, staleBefore time.Time) (int64, error)
}

// OrderWriter defines write operations for orders
type OrderWriter interface {
	UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, at time.Time) error
}

// OrderRepositoryFacade combines all order repository interfaces
type OrderRepositoryFacade interface {
	OrderReader
	OrderLocker
	OrderWriter
}
