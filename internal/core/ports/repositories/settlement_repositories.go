package repositories

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// SettlementReader defines read operations for debt settlements
type SettlementReader interface {
	// FindHostDebts returns the unrefunded debts owed by a host, optionally filtered by status.
	FindHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error)

	// FindHostIDsWithOwedSettlements returns the distinct hosts with at least one OWED debt.
	FindHostIDsWithOwedSettlements(ctx context.Context) ([]string, error)

	// FindSettlementsForUpdateInTx loads and row-locks the settlements of the given debt rows.
	FindSettlementsForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.TransactionSettlement, error)
}

// SettlementWriter defines write operations for debt settlements
type SettlementWriter interface {
	CreateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error
	UpdateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error
}

// SettlementRepositoryFacade combines all settlement repository interfaces
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
