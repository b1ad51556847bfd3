package repositories

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ActivityWriter appends audit records, always alongside the change they describe.
type ActivityWriter interface {
	CreateActivitiesInTx(ctx context.Context, tx pgx.Tx, activities []domain.Activity) error
}
