package services

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
)

// SettlementReaderSvc reads debt settlements
type SettlementReaderSvc interface {
	// GetHostDebts returns a host's debts joined with their settlement, optionally filtered.
	GetHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error)

	// GetAccountsWithOwedSettlements returns the hosts with at least one OWED debt.
	GetAccountsWithOwedSettlements(ctx context.Context) ([]string, error)
}

// SettlementWriterSvc drives debt reconciliation
type SettlementWriterSvc interface {
	// UpdateTransactionsSettlementStatus moves the debts to status and returns how many changed.
	// Moving to SETTLED requires an expense; re-applying a status is a no-op.
	UpdateTransactionsSettlementStatus(ctx context.Context, transactionIDs []string, status domain.SettlementStatus, settlementExpenseID *string, actorID string) (int, error)

	// InvoiceOwedSettlements creates one settlement expense per owing host and currency and
	// moves the covered debts to INVOICED. It returns the number of expenses created.
	InvoiceOwedSettlements(ctx context.Context) (int, error)
}

// SettlementSvcFacade combines all settlement service interfaces
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
