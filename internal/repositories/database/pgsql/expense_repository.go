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

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

// FindExpenseByID retrieves an expense by its ID.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `
		SELECT expense_id, type, status, collective_id, from_collective_id, amount, currency,
		       description, data, created_at
		FROM expenses
		WHERE expense_id = $1;
	`
	var m models.Expense
	err := r.Pool.QueryRow(ctx, query, expenseID).Scan(
		&m.ExpenseID,
		&m.Type,
		&m.Status,
		&m.CollectiveID,
		&m.FromCollectiveID,
		&m.Amount,
		&m.Currency,
		&m.Description,
		&m.Data,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("expense " + expenseID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find expense by ID "+expenseID, err)
	}

	d := mapping.ToDomainExpense(m)
	return &d, nil
}

// CreateExpenseInTx inserts an expense inside an open storage transaction.
func (r *PgxExpenseRepository) CreateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (
			expense_id, type, status, collective_id, from_collective_id, amount, currency,
			description, data, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.ExpenseID, m.Type, m.Status, m.CollectiveID, m.FromCollectiveID, m.Amount, m.Currency,
		m.Description, m.Data, m.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to insert expense "+m.ExpenseID)
	}
	return nil
}
