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

const subscriptionColumns = `
	subscription_id, collective_id, period, plan, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxSubscriptionRepository stores platform subscriptions with their period as a tstzrange.
// Overlaps between live subscriptions of one collective are also rejected by an exclusion constraint.
type PgxSubscriptionRepository struct {
	BaseRepository
}

func newPgxSubscriptionRepository(pool *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

func scanSubscription(row pgx.Row, m *models.PlatformSubscription) error {
	return row.Scan(
		&m.SubscriptionID,
		&m.CollectiveID,
		&m.Period,
		&m.Plan,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
}

// FindCurrentSubscription returns the live subscription whose period contains at.
func (r *PgxSubscriptionRepository) FindCurrentSubscription(ctx context.Context, collectiveID string, at time.Time) (*domain.PlatformSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM platform_subscriptions
		WHERE collective_id = $1 AND deleted_at IS NULL AND period @> $2::timestamptz
		ORDER BY lower(period) DESC
		LIMIT 1;
	`
	var m models.PlatformSubscription
	if err := scanSubscription(r.Pool.QueryRow(ctx, query, collectiveID, at), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no current platform subscription for collective " + collectiveID)
		}
		return nil, apperrors.NewAppError(500, "failed to find current subscription of collective "+collectiveID, err)
	}
	d := mapping.ToDomainSubscription(m)
	return &d, nil
}

// FindSubscriptionsInPeriod returns every subscription, soft-deleted ones included, intersecting [from, to).
func (r *PgxSubscriptionRepository) FindSubscriptionsInPeriod(ctx context.Context, collectiveID string, from, to time.Time) ([]domain.PlatformSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM platform_subscriptions
		WHERE collective_id = $1 AND period && tstzrange($2, $3, '[)')
		ORDER BY lower(period) DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, collectiveID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query subscriptions of collective "+collectiveID, err)
	}
	defer rows.Close()

	subscriptions := []domain.PlatformSubscription{}
	for rows.Next() {
		var m models.PlatformSubscription
		if err := scanSubscription(rows, &m); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan subscription row of collective "+collectiveID, err)
		}
		subscriptions = append(subscriptions, mapping.ToDomainSubscription(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating subscription rows of collective "+collectiveID, err)
	}
	return subscriptions, nil
}

// HasOverlappingSubscriptionInTx reports whether a live subscription of the collective overlaps period.
func (r *PgxSubscriptionRepository) HasOverlappingSubscriptionInTx(ctx context.Context, tx pgx.Tx, collectiveID string, period domain.Period) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM platform_subscriptions
			WHERE collective_id = $1 AND deleted_at IS NULL AND period && $2::tstzrange
		);
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, collectiveID, mapping.ToModelPeriod(period)).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check overlapping subscriptions of collective "+collectiveID, err)
	}
	return exists, nil
}

// CreateSubscriptionInTx inserts a subscription. The exclusion constraint surfaces as ErrDomainConstraint.
func (r *PgxSubscriptionRepository) CreateSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscription domain.PlatformSubscription) error {
	m := mapping.ToModelSubscription(subscription)
	query := `
		INSERT INTO platform_subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.SubscriptionID, m.CollectiveID, m.Period, m.Plan, m.DeletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to insert subscription for collective "+m.CollectiveID)
	}
	return nil
}

// CloseSubscriptionInTx moves the upper bound of a live subscription to end and soft-deletes it.
// The lower bound keeps its inclusivity.
func (r *PgxSubscriptionRepository) CloseSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscriptionID string, end domain.Bound, deletedAt time.Time, deletedBy string) error {
	var upper *time.Time
	upperBracket := "]"
	if !end.Unbounded {
		upper = &end.Value
		if !end.Inclusive {
			upperBracket = ")"
		}
	}

	query := `
		UPDATE platform_subscriptions
		SET period = tstzrange(
				lower(period),
				$2::timestamptz,
				(CASE WHEN lower_inc(period) THEN '[' ELSE '(' END) || $3::text
			),
			deleted_at = $4,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE subscription_id = $1 AND deleted_at IS NULL;
	`
	tag, err := tx.Exec(ctx, query, subscriptionID, upper, upperBracket, deletedAt, deletedBy)
	if err != nil {
		return mapWriteError(err, "failed to close subscription "+subscriptionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("live subscription " + subscriptionID + " not found")
	}
	return nil
}
