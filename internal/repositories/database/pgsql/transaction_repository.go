package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/host_ledger/internal/models"
	"github.com/SscSPs/host_ledger/internal/utils/mapping"
	"github.com/SscSPs/host_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// transactionColumns is the column list every ledger row query selects, in scan order.
const transactionColumns = `
	t.transaction_id, t.transaction_group, t.type, t.kind, t.description,
	t.amount, t.currency, t.host_currency, t.host_currency_fx_rate, t.amount_in_host_currency,
	t.net_amount_in_collective_currency, t.platform_fee_in_host_currency, t.host_fee_in_host_currency,
	t.payment_processor_fee_in_host_currency, t.tax_amount,
	t.collective_id, t.from_collective_id, t.host_collective_id, t.order_id, t.expense_id,
	t.is_debt, t.is_refund, t.refund_transaction_id, t.data, t.created_at, t.created_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger rows.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row, t *models.Transaction) error {
	return row.Scan(
		&t.TransactionID,
		&t.TransactionGroup,
		&t.Type,
		&t.Kind,
		&t.Description,
		&t.Amount,
		&t.Currency,
		&t.HostCurrency,
		&t.HostCurrencyFxRate,
		&t.AmountInHostCurrency,
		&t.NetAmountInCollectiveCurrency,
		&t.PlatformFeeInHostCurrency,
		&t.HostFeeInHostCurrency,
		&t.PaymentProcessorFeeInHostCurrency,
		&t.TaxAmount,
		&t.CollectiveID,
		&t.FromCollectiveID,
		&t.HostCollectiveID,
		&t.OrderID,
		&t.ExpenseID,
		&t.IsDebt,
		&t.IsRefund,
		&t.RefundTransactionID,
		&t.Data,
		&t.CreatedAt,
		&t.CreatedBy,
	)
}

// SaveTransactionsInTx inserts ledger rows in a single batch. Rows are immutable once written.
func (r *PgxTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	query := `
		INSERT INTO transactions (
			transaction_id, transaction_group, type, kind, description,
			amount, currency, host_currency, host_currency_fx_rate, amount_in_host_currency,
			net_amount_in_collective_currency, platform_fee_in_host_currency, host_fee_in_host_currency,
			payment_processor_fee_in_host_currency, tax_amount,
			collective_id, from_collective_id, host_collective_id, order_id, expense_id,
			is_debt, is_refund, refund_transaction_id, data, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26);
	`
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.TransactionGroup,
			m.Type,
			m.Kind,
			m.Description,
			m.Amount,
			m.Currency,
			m.HostCurrency,
			m.HostCurrencyFxRate,
			m.AmountInHostCurrency,
			m.NetAmountInCollectiveCurrency,
			m.PlatformFeeInHostCurrency,
			m.HostFeeInHostCurrency,
			m.PaymentProcessorFeeInHostCurrency,
			m.TaxAmount,
			m.CollectiveID,
			m.FromCollectiveID,
			m.HostCollectiveID,
			m.OrderID,
			m.ExpenseID,
			m.IsDebt,
			m.IsRefund,
			m.RefundTransactionID,
			m.Data,
			m.CreatedAt,
			m.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	// Close surfaces the first failed insert of the batch.
	if err := br.Close(); err != nil {
		return mapWriteError(err, "failed to insert transactions of group "+transactions[0].TransactionGroup)
	}
	return nil
}

// HasRefundInTx reports whether a refund row already references the given CREDIT row.
func (r *PgxTransactionRepository) HasRefundInTx(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE refund_transaction_id = $1 AND is_refund AND type = 'CREDIT'
		);
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check refunds of transaction "+transactionID, err)
	}
	return exists, nil
}

// FindTransactionByID retrieves a single ledger row.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.transaction_id = $1;`

	var m models.Transaction
	if err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindTransactionsByGroup retrieves every row of one economic event, credits before debits.
func (r *PgxTransactionRepository) FindTransactionsByGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.transaction_group = $1
		ORDER BY t.created_at, t.kind, t.type, t.transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionGroup)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions of group "+transactionGroup, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var m models.Transaction
		if err := scanTransaction(rows, &m); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row of group "+transactionGroup, err)
		}
		transactions = append(transactions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows of group "+transactionGroup, err)
	}
	return mapping.ToDomainTransactionSlice(transactions), nil
}

// ListTransactionsByCollective retrieves a page of rows booked on a collective using token-based pagination.
func (r *PgxTransactionRepository) ListTransactionsByCollective(ctx context.Context, collectiveID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.collective_id = $1`
	// created_at DESC with transaction_id as the tie-breaker keeps the order stable.
	orderByClause := `ORDER BY t.created_at DESC, t.transaction_id DESC`
	args := []interface{}{collectiveID}

	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(apperrors.ErrValidation, decodeErr))
		}
		query += ` AND (t.created_at, t.transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions of collective "+collectiveID, err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		if err := scanTransaction(rows, &m); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row of collective "+collectiveID, err)
		}
		transactions = append(transactions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows of collective "+collectiveID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		// The token points to the last item included in this page.
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}
	return mapping.ToDomainTransactionSlice(transactions), nextTokenVal, nil
}
