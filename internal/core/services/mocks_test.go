package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Fake TransactionManager ---

// fakeTxManager hands out nil transactions and records how each one ended.
type fakeTxManager struct {
	mu        sync.Mutex
	beginErr  error
	commitErr error
	begun     int
	commits   int
	rollbacks int
	open      bool
}

var _ portsrepo.TransactionManager = (*fakeTxManager)(nil)

func (m *fakeTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begun++
	m.open = true
	return nil, nil
}

func (m *fakeTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	m.open = false
	return nil
}

func (m *fakeTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		m.rollbacks++
		m.open = false
	}
	return nil
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionsByGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error) {
	args := m.Called(ctx, transactionGroup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByCollective(ctx context.Context, collectiveID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, collectiveID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		token := args.Get(1).(string)
		next = &token
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	args := m.Called(ctx, tx, transactions)
	return args.Error(0)
}

func (m *MockTransactionRepository) HasRefundInTx(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error) {
	args := m.Called(ctx, tx, transactionID)
	return args.Bool(0), args.Error(1)
}

// --- Mock SettlementRepository ---
type MockSettlementRepository struct {
	mock.Mock
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

func (m *MockSettlementRepository) FindHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error) {
	args := m.Called(ctx, hostID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HostDebt), args.Error(1)
}

func (m *MockSettlementRepository) FindHostIDsWithOwedSettlements(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSettlementRepository) FindSettlementsForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.TransactionSettlement, error) {
	args := m.Called(ctx, tx, transactionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionSettlement), args.Error(1)
}

func (m *MockSettlementRepository) CreateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error {
	args := m.Called(ctx, tx, settlements)
	return args.Error(0)
}

func (m *MockSettlementRepository) UpdateSettlementsInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement) error {
	args := m.Called(ctx, tx, settlements)
	return args.Error(0)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)

func (m *MockExchangeRateRepository) FindExchangeRateAt(ctx context.Context, fromCode, toCode string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock FxRateReaderSvc ---
type MockFxRateService struct {
	mock.Mock
}

var _ portssvc.FxRateReaderSvc = (*MockFxRateService)(nil)

func (m *MockFxRateService) GetFxRate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFxRateService) GetExchangeRate(ctx context.Context, from, to string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock LedgerWriterSvc ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerWriterSvc = (*MockLedgerService)(nil)

func (m *MockLedgerService) CreateDoubleEntry(ctx context.Context, event domain.LedgerEvent) ([]domain.Transaction, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) CreateFromPayload(ctx context.Context, payload domain.LedgerPayload) ([]domain.Transaction, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) CreateFromPayloadInTx(ctx context.Context, tx pgx.Tx, payload domain.LedgerPayload) ([]domain.Transaction, error) {
	args := m.Called(ctx, tx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ValidatePayload(ctx context.Context, payload domain.LedgerPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockLedgerService) Refund(ctx context.Context, transactionID string, actorID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, transactionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock OrderRepository ---
type MockOrderRepository struct {
	mock.Mock
}

var _ portsrepo.OrderRepositoryFacade = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) AcquireLock(ctx context.Context, orderID string, now, staleBefore time.Time) (bool, error) {
	args := m.Called(ctx, orderID, now, staleBefore)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ReleaseLock(ctx context.Context, orderID string, lockedAt time.Time) (bool, error) {
	args := m.Called(ctx, orderID, lockedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ClearExpiredLocks(ctx context.Context, staleBefore time.Time) (int64, error) {
	args := m.Called(ctx, staleBefore)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, at time.Time) error {
	args := m.Called(ctx, tx, orderID, status, at)
	return args.Error(0)
}

// --- Fake OrderLocker ---

// fakeOrderLocker keeps order locks in memory with the same conditional semantics as
// the storage implementation.
type fakeOrderLocker struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	releaseErr error
	acquired   int
	released   int
}

var _ portsrepo.OrderLocker = (*fakeOrderLocker)(nil)

func newFakeOrderLocker(orders ...domain.Order) *fakeOrderLocker {
	f := &fakeOrderLocker{orders: make(map[string]*domain.Order)}
	for i := range orders {
		o := orders[i]
		f.orders[o.ID] = &o
	}
	return f
}

func (f *fakeOrderLocker) AcquireLock(ctx context.Context, orderID string, now, staleBefore time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return false, apperrors.NewNotFoundError("order " + orderID + " not found")
	}
	if o.Data.LockedAt != nil && !o.Data.LockedAt.Before(staleBefore) {
		return false, nil
	}
	o.Data.LockedAt = &now
	f.acquired++
	return true, nil
}

func (f *fakeOrderLocker) ReleaseLock(ctx context.Context, orderID string, lockedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return false, f.releaseErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return false, apperrors.NewNotFoundError("order " + orderID + " not found")
	}
	if o.Data.LockedAt == nil || !o.Data.LockedAt.Equal(lockedAt) {
		return false, nil
	}
	o.Data.LockedAt = nil
	f.released++
	return true, nil
}

func (f *fakeOrderLocker) ClearExpiredLocks(ctx context.Context, staleBefore time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cleared int64
	for _, o := range f.orders {
		if o.Data.LockedAt == nil || !o.Data.LockedAt.Before(staleBefore) {
			continue
		}
		o.Data.Deadlocks = append(o.Data.Deadlocks, *o.Data.LockedAt)
		o.Data.LockedAt = nil
		cleared++
	}
	return cleared, nil
}

func (f *fakeOrderLocker) order(id string) domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.orders[id]
}

// --- Mock CollectiveRepository ---
type MockCollectiveRepository struct {
	mock.Mock
}

var _ portsrepo.CollectiveReader = (*MockCollectiveRepository)(nil)

func (m *MockCollectiveRepository) FindCollectiveByID(ctx context.Context, collectiveID string) (*domain.Collective, error) {
	args := m.Called(ctx, collectiveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collective), args.Error(1)
}

// --- Mock ActivityRepository ---
type MockActivityRepository struct {
	mock.Mock
}

var _ portsrepo.ActivityWriter = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) CreateActivitiesInTx(ctx context.Context, tx pgx.Tx, activities []domain.Activity) error {
	args := m.Called(ctx, tx, activities)
	return args.Error(0)
}

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
}

var _ portsrepo.ExpenseRepositoryFacade = (*MockExpenseRepository)(nil)

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) CreateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	args := m.Called(ctx, tx, expense)
	return args.Error(0)
}

// --- Mock UsageRepository ---
type MockUsageRepository struct {
	mock.Mock
}

var _ portsrepo.UsageReader = (*MockUsageRepository)(nil)

func (m *MockUsageRepository) CountActiveCollectives(ctx context.Context, hostID string, from, to time.Time) (int64, error) {
	args := m.Called(ctx, hostID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsageRepository) CountExpensesPaid(ctx context.Context, hostID string, from, to time.Time) (int64, error) {
	args := m.Called(ctx, hostID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// --- Fake SubscriptionRepository ---

// fakeSubscriptionRepository stores subscriptions in memory and enforces the
// per-collective non-overlap rule the way the exclusion constraint does.
type fakeSubscriptionRepository struct {
	mu            sync.Mutex
	subscriptions []domain.PlatformSubscription
}

var _ portsrepo.SubscriptionRepositoryFacade = (*fakeSubscriptionRepository)(nil)

func (f *fakeSubscriptionRepository) FindCurrentSubscription(ctx context.Context, collectiveID string, at time.Time) (*domain.PlatformSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subscriptions {
		if s.CollectiveID == collectiveID && s.DeletedAt == nil && s.IsActiveAt(at) {
			found := s
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no current subscription")
}

func (f *fakeSubscriptionRepository) FindSubscriptionsInPeriod(ctx context.Context, collectiveID string, from, to time.Time) ([]domain.PlatformSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	window := domain.NewHalfOpenPeriod(from, to)
	var out []domain.PlatformSubscription
	for _, s := range f.subscriptions {
		if s.CollectiveID == collectiveID && s.Period.Overlaps(window) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.Start.Value.After(out[j].Period.Start.Value)
	})
	return out, nil
}

func (f *fakeSubscriptionRepository) HasOverlappingSubscriptionInTx(ctx context.Context, tx pgx.Tx, collectiveID string, period domain.Period) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlaps(collectiveID, period), nil
}

func (f *fakeSubscriptionRepository) CreateSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscription domain.PlatformSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlaps(subscription.CollectiveID, subscription.Period) {
		return apperrors.NewDomainConstraintError("conflicting key value violates exclusion constraint")
	}
	f.subscriptions = append(f.subscriptions, subscription)
	return nil
}

func (f *fakeSubscriptionRepository) CloseSubscriptionInTx(ctx context.Context, tx pgx.Tx, subscriptionID string, end domain.Bound, deletedAt time.Time, deletedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subscriptions {
		if f.subscriptions[i].ID == subscriptionID {
			f.subscriptions[i].Period.End = end
			f.subscriptions[i].DeletedAt = &deletedAt
			f.subscriptions[i].LastUpdatedBy = deletedBy
			return nil
		}
	}
	return apperrors.NewNotFoundError("subscription " + subscriptionID + " not found")
}

func (f *fakeSubscriptionRepository) overlaps(collectiveID string, period domain.Period) bool {
	for _, s := range f.subscriptions {
		if s.CollectiveID == collectiveID && s.DeletedAt == nil && s.Period.Overlaps(period) {
			return true
		}
	}
	return false
}

// --- Mock PaymentProvider ---
type MockPaymentProvider struct {
	mock.Mock
	name string
}

var _ portssvc.PaymentProvider = (*MockPaymentProvider)(nil)

func (m *MockPaymentProvider) Name() string {
	return m.name
}

func (m *MockPaymentProvider) Charge(ctx context.Context, req portssvc.ChargeRequest) (*portssvc.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ChargeResult), args.Error(1)
}

func strPtr(s string) *string {
	return &s
}
