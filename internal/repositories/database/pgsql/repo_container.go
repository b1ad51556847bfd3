package pgsql

import (
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        &BaseRepository{Pool: dbPool},
		TransactionRepo:  newPgxTransactionRepository(dbPool),
		OrderRepo:        newPgxOrderRepository(dbPool),
		CollectiveRepo:   newPgxCollectiveRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		SettlementRepo:   newPgxSettlementRepository(dbPool),
		SubscriptionRepo: newPgxSubscriptionRepository(dbPool),
		ActivityRepo:     newPgxActivityRepository(dbPool),
		ExpenseRepo:      newPgxExpenseRepository(dbPool),
		UsageRepo:        newPgxUsageRepository(dbPool),
	}
}
