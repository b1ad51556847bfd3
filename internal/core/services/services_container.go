package services

import (
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/SscSPs/host_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// reg may be nil, in which case no metrics are recorded.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, reg *metrics.Registry, providers ...portssvc.PaymentProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Currency conversion is a leaf, every money moving service depends on it
	container.CurrencyConversion = NewCurrencyConversionService(repos.ExchangeRateRepo)

	container.Ledger = NewLedgerService(
		repos.TxManager,
		repos.TransactionRepo,
		repos.SettlementRepo,
		container.CurrencyConversion,
		WithPlatformAccount(cfg.PlatformCollectiveID, cfg.PlatformCurrency),
		WithLedgerMetrics(reg),
	)

	container.OrderLock = NewOrderLockService(
		repos.OrderRepo,
		cfg.OrderLockStaleAfter,
		WithOrderLockMetrics(reg),
	)

	container.Settlement = NewSettlementService(
		repos.TxManager,
		repos.SettlementRepo,
		repos.ExpenseRepo,
		repos.ActivityRepo,
		WithSettlementPlatformAccount(cfg.PlatformCollectiveID),
		WithSettlementMetrics(reg),
	)

	container.Subscription = NewSubscriptionService(
		repos.TxManager,
		repos.SubscriptionRepo,
		repos.UsageRepo,
		repos.ActivityRepo,
		WithSubscriptionMetrics(reg),
	)

	container.Payment = NewPaymentService(
		repos.TxManager,
		repos.OrderRepo,
		repos.CollectiveRepo,
		repos.ActivityRepo,
		container.Ledger,
		container.CurrencyConversion,
		container.OrderLock,
		WithPaymentProviders(providers...),
	)

	return container
}
