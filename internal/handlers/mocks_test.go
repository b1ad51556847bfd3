package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyConversionService ---
type MockCurrencyConversionService struct {
	mock.Mock
}

func (m *MockCurrencyConversionService) GetFxRate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockCurrencyConversionService) GetExchangeRate(ctx context.Context, from, to string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockCurrencyConversionService) SaveExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actorID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

var _ portssvc.CurrencyConversionSvcFacade = (*MockCurrencyConversionService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

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
func (m *MockLedgerService) GetTransactionGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error) {
	args := m.Called(ctx, transactionGroup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ListTransactionsByCollective(ctx context.Context, collectiveID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, collectiveID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock SettlementService ---
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error) {
	args := m.Called(ctx, hostID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HostDebt), args.Error(1)
}
func (m *MockSettlementService) GetAccountsWithOwedSettlements(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockSettlementService) UpdateTransactionsSettlementStatus(ctx context.Context, transactionIDs []string, status domain.SettlementStatus, settlementExpenseID *string, actorID string) (int, error) {
	args := m.Called(ctx, transactionIDs, status, settlementExpenseID, actorID)
	return args.Int(0), args.Error(1)
}
func (m *MockSettlementService) InvoiceOwedSettlements(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

// --- Mock SubscriptionService ---
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) CreateSubscription(ctx context.Context, hostID string, start time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error) {
	args := m.Called(ctx, hostID, start, plan, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformSubscription), args.Error(1)
}
func (m *MockSubscriptionService) ReplaceCurrentSubscription(ctx context.Context, hostID string, cut time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error) {
	args := m.Called(ctx, hostID, cut, plan, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformSubscription), args.Error(1)
}
func (m *MockSubscriptionService) GetCurrentSubscription(ctx context.Context, hostID string, at time.Time) (*domain.PlatformSubscription, error) {
	args := m.Called(ctx, hostID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformSubscription), args.Error(1)
}
func (m *MockSubscriptionService) GetSubscriptionsInBillingPeriod(ctx context.Context, hostID string, period domain.BillingPeriod) ([]domain.PlatformSubscription, error) {
	args := m.Called(ctx, hostID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlatformSubscription), args.Error(1)
}
func (m *MockSubscriptionService) CalculateUtilization(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Utilization, error) {
	args := m.Called(ctx, hostID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Utilization), args.Error(1)
}
func (m *MockSubscriptionService) CalculateBilling(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Billing, error) {
	args := m.Called(ctx, hostID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Billing), args.Error(1)
}

var _ portssvc.SubscriptionSvcFacade = (*MockSubscriptionService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ProcessOrderPayment(ctx context.Context, orderID string, req dto.ProcessOrderPaymentRequest, actorID string) (*dto.ProcessOrderPaymentResponse, error) {
	args := m.Called(ctx, orderID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProcessOrderPaymentResponse), args.Error(1)
}
func (m *MockPaymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

var _ portssvc.PaymentSvc = (*MockPaymentService)(nil)
