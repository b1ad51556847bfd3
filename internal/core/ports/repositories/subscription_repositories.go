package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// SubscriptionReader defines read operations for platform subscriptions
type SubscriptionReader interface {
	// FindCurrentSubscription returns the non-deleted subscription covering at.
	FindCurrentSubscription(ctx context.Context, collectiveID string, at time.Time) (*domain.PlatformSubscription, error)

	// FindSubscriptionsInPeriod returns every subscription, soft-deleted ones included,
	// whose period intersects [from, to), most recent start first.
	FindSubscriptionsInPeriod(ctx context.Context, collectiveID string, from, to time.Time) ([]domain.PlatformSubscription, error)

	// HasOverlappingSubscriptionInTx reports whether a non-deleted subscription overlaps period.
	HasOverlappingSubscriptionInTx(ctx context.Context, tx pgx.Tx, collectiveID string, period domain.Period) (bool, error)
}

// SubscriptionWriter defines write operations for platform subscriptions
type SubscriptionWriter interface {
	// CreateSubscriptionInTx inserts a subscription. An overlap with another non-deleted
	// subscription of the same collective fails with ErrDomainConstraint.
	CreateSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscription domain.PlatformSubscription) error

	// CloseSubscriptionInTx sets the end of a subscription and soft-deletes it.
	CloseSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscriptionID string, end domain.Bound, deletedAt time.Time, deletedBy string) error
}

// SubscriptionRepositoryFacade combines all subscription repository interfaces
type SubscriptionRepositoryFacade interface {
	SubscriptionReader
	SubscriptionWriter
}
