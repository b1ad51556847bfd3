package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUsageRepository struct {
	BaseRepository
}

func newPgxUsageRepository(pool *pgxpool.Pool) portsrepo.UsageReader {
	return &PgxUsageRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.UsageReader = (*PgxUsageRepository)(nil)

// CountActiveCollectives counts the distinct hosted accounts with a ledger row in [from, to).
// Events and projects count as their parent.
func (r *PgxUsageRepository) CountActiveCollectives(ctx context.Context, hostID string, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT
			CASE WHEN c.type IN ($4, $5) AND c.parent_collective_id IS NOT NULL
			     THEN c.parent_collective_id
			     ELSE c.collective_id
			END)
		FROM transactions t
		JOIN collectives c ON c.collective_id = t.collective_id
		WHERE c.host_collective_id = $1
		  AND t.created_at >= $2 AND t.created_at < $3;
	`
	var count int64
	err := r.Pool.QueryRow(ctx, query, hostID, from, to,
		string(domain.CollectiveTypeEvent), string(domain.CollectiveTypeProject),
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count active collectives of host "+hostID, err)
	}
	return count, nil
}

// CountExpensesPaid counts distinct expenses with a paid activity in [from, to).
// An expense paid twice in the window counts once.
func (r *PgxUsageRepository) CountExpensesPaid(ctx context.Context, hostID string, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT a.expense_id)
		FROM activities a
		WHERE a.type = $4 AND a.host_collective_id = $1 AND a.expense_id IS NOT NULL
		  AND a.created_at >= $2 AND a.created_at < $3;
	`
	var count int64
	err := r.Pool.QueryRow(ctx, query, hostID, from, to, string(domain.ActivityCollectiveExpensePaid)).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count paid expenses of host "+hostID, err)
	}
	return count, nil
}
