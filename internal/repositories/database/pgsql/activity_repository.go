package pgsql

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/host_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxActivityRepository struct {
	BaseRepository
}

func newPgxActivityRepository(pool *pgxpool.Pool) portsrepo.ActivityWriter {
	return &PgxActivityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ActivityWriter = (*PgxActivityRepository)(nil)

// CreateActivitiesInTx appends activities in a single batch.
func (r *PgxActivityRepository) CreateActivitiesInTx(ctx context.Context, tx pgx.Tx, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	query := `
		INSERT INTO activities (
			activity_id, type, collective_id, host_collective_id, expense_id, transaction_id,
			data, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, activity := range activities {
		m := mapping.ToModelActivity(activity)
		batch.Queue(query,
			m.ActivityID, m.Type, m.CollectiveID, m.HostCollectiveID, m.ExpenseID, m.TransactionID,
			m.Data, m.CreatedBy, m.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert activities", err)
	}
	return nil
}
