package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/host_ledger/internal/models"
	"github.com/SscSPs/host_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for orders and their payment locks.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryFacade {
	return &PgxOrderRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxOrderRepository implements portsrepo.OrderRepositoryFacade
var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

// FindOrderByID retrieves an order by its ID.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, status, total_amount, platform_tip_amount, currency, description,
		       from_collective_id, collective_id, subscription_id, COALESCE(data, '{}'::jsonb),
		       created_at, updated_at
		FROM orders
		WHERE order_id = $1;
	`
	var m models.Order
	err := r.Pool.QueryRow(ctx, query, orderID).Scan(
		&m.OrderID,
		&m.Status,
		&m.TotalAmount,
		&m.PlatformTipAmount,
		&m.Currency,
		&m.Description,
		&m.FromCollectiveID,
		&m.CollectiveID,
		&m.SubscriptionID,
		&m.Data,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("order " + orderID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find order by ID "+orderID, err)
	}

	d := mapping.ToDomainOrder(m)
	return &d, nil
}

// AcquireLock takes the payment lock with a single conditional update, so two callers
// can never both observe the order as unlocked.
func (r *PgxOrderRepository) AcquireLock(ctx context.Context, orderID string, now, staleBefore time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET data = jsonb_set(COALESCE(data, '{}'::jsonb), '{lockedAt}', to_jsonb($2::timestamptz))
		WHERE order_id = $1
		  AND (data->>'lockedAt' IS NULL OR (data->>'lockedAt')::timestamptz < $3);
	`
	tag, err := r.Pool.Exec(ctx, query, orderID, now, staleBefore)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to lock order "+orderID, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Nothing updated: either the lock is held or the order does not exist.
	if err := r.ensureOrderExists(ctx, orderID); err != nil {
		return false, err
	}
	return false, nil
}

// ReleaseLock clears data.lockedAt only while it is still the value this holder wrote.
func (r *PgxOrderRepository) ReleaseLock(ctx context.Context, orderID string, lockedAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET data = data - 'lockedAt'
		WHERE order_id = $1
		  AND (data->>'lockedAt')::timestamptz = $2::timestamptz;
	`
	tag, err := r.Pool.Exec(ctx, query, orderID, lockedAt)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to unlock order "+orderID, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	if err := r.ensureOrderExists(ctx, orderID); err != nil {
		return false, err
	}
	return false, nil
}

// ClearExpiredLocks releases locks taken before staleBefore and keeps their timestamps in data.deadlocks.
func (r *PgxOrderRepository) ClearExpiredLocks(ctx context.Context, staleBefore time.Time) (int64, error) {
	query := `
		UPDATE orders
		SET data = (data - 'lockedAt') || jsonb_build_object(
			'deadlocks', COALESCE(data->'deadlocks', '[]'::jsonb) || jsonb_build_array(data->'lockedAt')
		)
		WHERE data->>'lockedAt' IS NOT NULL
		  AND (data->>'lockedAt')::timestamptz < $1;
	`
	tag, err := r.Pool.Exec(ctx, query, staleBefore)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to clear expired order locks", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateOrderStatusInTx sets the status of an order inside an open storage transaction.
func (r *PgxOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, at time.Time) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1;`
	tag, err := tx.Exec(ctx, query, orderID, string(status), at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of order "+orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("order " + orderID + " not found")
	}
	return nil
}

func (r *PgxOrderRepository) ensureOrderExists(ctx context.Context, orderID string) error {
	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1);`, orderID).Scan(&exists); err != nil {
		return apperrors.NewAppError(500, "failed to check order "+orderID, err)
	}
	if !exists {
		return apperrors.NewNotFoundError("order " + orderID + " not found")
	}
	return nil
}
