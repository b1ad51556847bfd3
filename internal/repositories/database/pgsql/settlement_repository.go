package pgsql

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/host_ledger/internal/models"
	"github.com/SscSPs/host_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settlementColumns = `
	s.transaction_id, s.transaction_group, s.host_collective_id, s.kind, s.status,
	s.settlement_expense_id, s.created_at, s.updated_at`

// notRefunded excludes debt rows that a refund has cancelled.
const notRefunded = `
	NOT EXISTS (
		SELECT 1 FROM transactions r
		WHERE r.refund_transaction_id = t.transaction_id AND r.is_refund
	)`

type PgxSettlementRepository struct {
	BaseRepository
}

func newPgxSettlementRepository(pool *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

func scanSettlement(row pgx.Row, s *models.TransactionSettlement) error {
	return row.Scan(
		&s.TransactionID,
		&s.TransactionGroup,
		&s.HostCollectiveID,
		&s.Kind,
		&s.Status,
		&s.SettlementExpenseID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// FindHostDebts returns the unrefunded debts of a host joined with their settlement, oldest first.
func (r *PgxSettlementRepository) FindHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error) {
	query := `
		SELECT ` + transactionColumns + `, ` + settlementColumns + `
		FROM transaction_settlements s
		JOIN transactions t ON t.transaction_id = s.transaction_id
		WHERE s.host_collective_id = $1 AND t.is_debt AND ` + notRefunded
	args := []interface{}{hostID}
	if status != nil {
		query += ` AND s.status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY t.created_at, t.transaction_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query debts of host "+hostID, err)
	}
	defer rows.Close()

	debts := []domain.HostDebt{}
	for rows.Next() {
		var t models.Transaction
		var s models.TransactionSettlement
		err := rows.Scan(
			&t.TransactionID, &t.TransactionGroup, &t.Type, &t.Kind, &t.Description,
			&t.Amount, &t.Currency, &t.HostCurrency, &t.HostCurrencyFxRate, &t.AmountInHostCurrency,
			&t.NetAmountInCollectiveCurrency, &t.PlatformFeeInHostCurrency, &t.HostFeeInHostCurrency,
			&t.PaymentProcessorFeeInHostCurrency, &t.TaxAmount,
			&t.CollectiveID, &t.FromCollectiveID, &t.HostCollectiveID, &t.OrderID, &t.ExpenseID,
			&t.IsDebt, &t.IsRefund, &t.RefundTransactionID, &t.Data, &t.CreatedAt, &t.CreatedBy,
			&s.TransactionID, &s.TransactionGroup, &s.HostCollectiveID, &s.Kind, &s.Status,
			&s.SettlementExpenseID, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan debt row of host "+hostID, err)
		}
		debts = append(debts, mapping.ToDomainHostDebt(t, s))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating debt rows of host "+hostID, err)
	}
	return debts, nil
}

// FindHostIDsWithOwedSettlements returns the distinct hosts with at least one unrefunded OWED debt.
func (r *PgxSettlementRepository) FindHostIDsWithOwedSettlements(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT s.host_collective_id
		FROM transaction_settlements s
		JOIN transactions t ON t.transaction_id = s.transaction_id
		WHERE s.status = 'OWED' AND ` + notRefunded + `
		ORDER BY s.host_collective_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query hosts with owed settlements", err)
	}
	hostIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan hosts with owed settlements", err)
	}
	return hostIDs, nil
}

// FindSettlementsForUpdateInTx loads and row-locks settlements in a stable order to avoid deadlocks.
func (r *PgxSettlementRepository) FindSettlementsForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.TransactionSettlement, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM transaction_settlements s
		WHERE s.transaction_id = ANY($1)
		ORDER BY s.transaction_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock settlements for update", err)
	}
	defer rows.Close()

	settlements := []domain.TransactionSettlement{}
	for rows.Next() {
		var m models.TransactionSettlement
		if err := scanSettlement(rows, &m); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan settlement row", err)
		}
		settlements = append(settlements, mapping.ToDomainSettlement(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating settlement rows", err)
	}
	return settlements, nil
}

// CreateSettlementsInTx inserts settlements in a single batch.
func (r *PgxSettlementRepository) CreateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error {
	if len(settlements) == 0 {
		return nil
	}
	query := `
		INSERT INTO transaction_settlements (
			transaction_id, transaction_group, host_collective_id, kind, status,
			settlement_expense_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, settlement := range settlements {
		m := mapping.ToModelSettlement(settlement)
		batch.Queue(query,
			m.TransactionID, m.TransactionGroup, m.HostCollectiveID, m.Kind, m.Status,
			m.SettlementExpenseID, m.CreatedAt, m.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "failed to insert settlements")
	}
	return nil
}

// UpdateSettlementsInTx writes status, expense and update time of the given settlements.
func (r *PgxSettlementRepository) UpdateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error {
	if len(settlements) == 0 {
		return nil
	}
	query := `
		UPDATE transaction_settlements
		SET status = $2, settlement_expense_id = $3, updated_at = $4
		WHERE transaction_id = $1;
	`
	batch := &pgx.Batch{}
	for _, settlement := range settlements {
		m := mapping.ToModelSettlement(settlement)
		batch.Queue(query, m.TransactionID, m.Status, m.SettlementExpenseID, m.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update settlements", err)
	}
	return nil
}
