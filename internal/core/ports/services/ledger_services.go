package services

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
)

// LedgerWriterSvc records economic events as balanced ledger rows.
type LedgerWriterSvc interface {
	// CreateDoubleEntry records one CREDIT/DEBIT pair in its own storage transaction.
	CreateDoubleEntry(ctx context.Context, event domain.LedgerEvent) ([]domain.Transaction, error)

	// CreateFromPayload expands a provider payload into pairs (main, tip, debt) and
	// records them atomically.
	CreateFromPayload(ctx context.Context, payload domain.LedgerPayload) ([]domain.Transaction, error)

	// CreateFromPayloadInTx is CreateFromPayload inside a caller-owned storage transaction.
	CreateFromPayloadInTx(ctx context.Context, tx pgx.Tx, payload domain.LedgerPayload) ([]domain.Transaction, error)

	// ValidatePayload runs the CreateFromPayload checks without recording anything.
	ValidatePayload(ctx context.Context, payload domain.LedgerPayload) error

	// Refund records the inverse of every pair of the transaction's group in a new group.
	Refund(ctx context.Context, transactionID string, actorID string) ([]domain.Transaction, error)
}

// LedgerReaderSvc reads ledger rows.
type LedgerReaderSvc interface {
	GetTransactionGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error)
	ListTransactionsByCollective(ctx context.Context, collectiveID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
