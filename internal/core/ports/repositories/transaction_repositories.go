package repositories

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for ledger rows
type TransactionReader interface {
	// FindTransactionByID retrieves a single ledger row.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByGroup retrieves every row of one economic event.
	FindTransactionsByGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error)

	// ListTransactionsByCollective retrieves a page of rows booked on a collective, newest first.
	// It returns the rows, a token for the next page, and an error.
	ListTransactionsByCollective(ctx context.Context, collectiveID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for ledger rows
type TransactionWriter interface {
	// SaveTransactionsInTx inserts rows inside an open storage transaction.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error

	// HasRefundInTx reports whether a refund already references the CREDIT row.
	HasRefundInTx(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error)
}

// TransactionRepositoryFacade combines all ledger row repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
