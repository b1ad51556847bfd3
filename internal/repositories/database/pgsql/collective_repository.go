package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/host_ledger/internal/models"
	"github.com/SscSPs/host_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCollectiveRepository struct {
	BaseRepository
}

func newPgxCollectiveRepository(pool *pgxpool.Pool) portsrepo.CollectiveReader {
	return &PgxCollectiveRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CollectiveReader = (*PgxCollectiveRepository)(nil)

// FindCollectiveByID retrieves an account together with its host reference.
func (r *PgxCollectiveRepository) FindCollectiveByID(ctx context.Context, collectiveID string) (*domain.Collective, error) {
	query := `
		SELECT collective_id, type, name, currency, parent_collective_id, host_collective_id
		FROM collectives
		WHERE collective_id = $1;
	`
	var m models.Collective
	err := r.Pool.QueryRow(ctx, query, collectiveID).Scan(
		&m.CollectiveID,
		&m.Type,
		&m.Name,
		&m.Currency,
		&m.ParentCollectiveID,
		&m.HostCollectiveID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("collective " + collectiveID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find collective by ID "+collectiveID, err)
	}

	d := mapping.ToDomainCollective(m)
	return &d, nil
}
