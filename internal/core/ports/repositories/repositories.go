package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager        TransactionManager
	TransactionRepo  TransactionRepositoryFacade
	OrderRepo        OrderRepositoryFacade
	CollectiveRepo   CollectiveReader
	ExchangeRateRepo ExchangeRateRepositoryFacade
	SettlementRepo   SettlementRepositoryFacade
	SubscriptionRepo SubscriptionRepositoryFacade
	ActivityRepo     ActivityWriter
	ExpenseRepo      ExpenseRepositoryFacade
	UsageRepo        UsageReader
}
