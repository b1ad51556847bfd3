package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/core/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	platformID    = "platform"
	hostID        = "host-1"
	collectiveID  = "collective-1"
	contributorID = "contributor-1"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	txManager      *fakeTxManager
	txnRepo        *MockTransactionRepository
	settlementRepo *MockSettlementRepository
	fx             *MockFxRateService
	service        portssvc.LedgerSvcFacade
	now            time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.txManager = &fakeTxManager{}
	suite.txnRepo = new(MockTransactionRepository)
	suite.settlementRepo = new(MockSettlementRepository)
	suite.fx = new(MockFxRateService)
	suite.now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewLedgerService(
		suite.txManager,
		suite.txnRepo,
		suite.settlementRepo,
		suite.fx,
		services.WithPlatformAccount(platformID, "USD"),
		services.WithLedgerClock(func() time.Time { return suite.now }),
	)
}

func (suite *LedgerServiceTestSuite) contribution(amount int64) domain.LedgerPayload {
	host := hostID
	order := "order-1"
	return domain.LedgerPayload{
		Kind:             domain.KindContribution,
		Description:      "Monthly donation",
		CollectiveID:     collectiveID,
		FromCollectiveID: contributorID,
		HostCollectiveID: &host,
		OrderID:          &order,
		Amount:           amount,
		Currency:         "USD",
		HostCurrency:     "USD",
		CreatedBy:        "api",
	}
}

func rowsOfKind(rows []domain.Transaction, kind domain.TransactionKind, typ domain.TransactionType) []domain.Transaction {
	var out []domain.Transaction
	for _, r := range rows {
		if r.Kind == kind && r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func (suite *LedgerServiceTestSuite) TestCreateDoubleEntry_Balanced() {
	ctx := context.Background()
	order := "order-1"
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).Return(nil).Once()

	rows, err := suite.service.CreateDoubleEntry(ctx, domain.LedgerEvent{
		Kind:               domain.KindContribution,
		CollectiveID:       collectiveID,
		FromCollectiveID:   contributorID,
		Amount:             10000,
		Currency:           "USD",
		HostCurrency:       "USD",
		HostCurrencyFxRate: decimal.NewFromInt(1),
		Fees:               domain.FeeBreakdown{HostFee: 500, PaymentProcessorFee: 300, Tax: 200},
		OrderID:            &order,
		CreatedBy:          "api",
	})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	credit, debit := rows[0], rows[1]
	suite.Equal(domain.Credit, credit.Type)
	suite.Equal(domain.Debit, debit.Type)
	suite.Equal(int64(10000), credit.Amount)
	suite.Equal(int64(-10000), debit.Amount)
	suite.Equal(credit.TransactionGroup, debit.TransactionGroup)
	suite.Equal(int64(9000), credit.NetAmountInCollectiveCurrency)
	suite.Equal(int64(-500), credit.HostFeeInHostCurrency)
	suite.Equal(int64(-300), credit.PaymentProcessorFeeInHostCurrency)
	suite.Equal(int64(-200), credit.TaxAmount)
	suite.Equal(collectiveID, credit.CollectiveID)
	suite.Equal(contributorID, debit.CollectiveID)
	suite.Equal(suite.now, credit.CreatedAt)
	suite.NoError(accounting.ValidateGroupBalance(rows))
	suite.Equal(1, suite.txManager.commits)
	suite.settlementRepo.AssertNotCalled(suite.T(), "CreateSettlementsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateDoubleEntry_NegativeAmountSwapsParties() {
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rows, err := suite.service.CreateDoubleEntry(context.Background(), domain.LedgerEvent{
		Kind:               domain.KindBalanceTransfer,
		CollectiveID:       collectiveID,
		FromCollectiveID:   hostID,
		Amount:             -2500,
		Currency:           "USD",
		HostCurrency:       "USD",
		HostCurrencyFxRate: decimal.NewFromInt(1),
		CreatedBy:          "api",
	})

	suite.Require().NoError(err)
	suite.Equal(hostID, rows[0].CollectiveID)
	suite.Equal(int64(2500), rows[0].Amount)
	suite.Equal(collectiveID, rows[1].CollectiveID)
}

func (suite *LedgerServiceTestSuite) TestCreateDoubleEntry_ValidationErrors() {
	tests := []struct {
		name  string
		event domain.LedgerEvent
	}{
		{
			name:  "zero amount",
			event: domain.LedgerEvent{Kind: domain.KindBalanceTransfer, CollectiveID: "a", FromCollectiveID: "b", Currency: "USD", HostCurrency: "USD", HostCurrencyFxRate: decimal.NewFromInt(1), CreatedBy: "api"},
		},
		{
			name:  "missing currency",
			event: domain.LedgerEvent{Kind: domain.KindBalanceTransfer, CollectiveID: "a", FromCollectiveID: "b", Amount: 100, HostCurrency: "USD", HostCurrencyFxRate: decimal.NewFromInt(1), CreatedBy: "api"},
		},
		{
			name: "fees exceed amount",
			event: domain.LedgerEvent{Kind: domain.KindBalanceTransfer, CollectiveID: "a", FromCollectiveID: "b", Amount: 100, Currency: "USD", HostCurrency: "USD",
				HostCurrencyFxRate: decimal.NewFromInt(1), Fees: domain.FeeBreakdown{HostFee: 150}, CreatedBy: "api"},
		},
		{
			name:  "expense kind without expense",
			event: domain.LedgerEvent{Kind: domain.KindExpense, CollectiveID: "a", FromCollectiveID: "b", Amount: 100, Currency: "USD", HostCurrency: "USD", HostCurrencyFxRate: decimal.NewFromInt(1), CreatedBy: "api"},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rows, err := suite.service.CreateDoubleEntry(context.Background(), tt.event)
			suite.Nil(rows)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.Equal(0, suite.txManager.begun)
	suite.txnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateDoubleEntry_ResolvesMissingRate() {
	suite.fx.On("GetFxRate", mock.Anything, "EUR", "USD", suite.now).Return(decimal.RequireFromString("1.1"), nil).Once()
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rows, err := suite.service.CreateDoubleEntry(context.Background(), domain.LedgerEvent{
		Kind:             domain.KindBalanceTransfer,
		CollectiveID:     collectiveID,
		FromCollectiveID: hostID,
		Amount:           1000,
		Currency:         "EUR",
		HostCurrency:     "USD",
		CreatedBy:        "api",
	})

	suite.Require().NoError(err)
	suite.Equal(int64(1100), rows[0].AmountInHostCurrency)
	suite.Equal(int64(-1100), rows[1].AmountInHostCurrency)
	suite.fx.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_FeesOnTop() {
	var saved []domain.Transaction
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.Transaction) }).
		Return(nil).Once()

	payload := suite.contribution(11000)
	payload.PlatformTipAmount = 1000
	payload.Fees = domain.FeeBreakdown{PlatformFee: 700, PaymentProcessorFee: 300}
	payload.Data = map[string]any{domain.DataKeyIsFeesOnTop: true}

	rows, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 4)
	suite.Equal(rows, saved)

	mainCredit := rowsOfKind(rows, domain.KindContribution, domain.Credit)
	suite.Require().Len(mainCredit, 1)
	suite.Equal(int64(10000), mainCredit[0].Amount)
	suite.Equal(int64(0), mainCredit[0].PlatformFeeInHostCurrency)
	suite.Equal(int64(9700), mainCredit[0].NetAmountInCollectiveCurrency)

	tipCredit := rowsOfKind(rows, domain.KindPlatformTip, domain.Credit)
	tipDebit := rowsOfKind(rows, domain.KindPlatformTip, domain.Debit)
	suite.Require().Len(tipCredit, 1)
	suite.Require().Len(tipDebit, 1)
	suite.Equal(int64(1000), tipCredit[0].Amount)
	suite.Equal(int64(-1000), tipDebit[0].Amount)
	suite.Equal(platformID, tipCredit[0].CollectiveID)
	suite.Equal(contributorID, tipCredit[0].FromCollectiveID)
	suite.Equal(contributorID, tipDebit[0].CollectiveID)
	suite.Equal(mainCredit[0].TransactionGroup, tipCredit[0].TransactionGroup)

	suite.Empty(rowsOfKind(rows, domain.KindPlatformTipDebt, domain.Credit))
	suite.NoError(accounting.ValidateGroupBalance(rows))
	suite.settlementRepo.AssertNotCalled(suite.T(), "CreateSettlementsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_PlatformFeeReducesNet() {
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	payload := suite.contribution(10000)
	payload.Fees = domain.FeeBreakdown{HostFee: 500, PlatformFee: 400}

	rows, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.Require().NoError(err)
	credit := rowsOfKind(rows, domain.KindContribution, domain.Credit)
	suite.Require().Len(credit, 1)
	suite.Equal(int64(-400), credit[0].PlatformFeeInHostCurrency)
	suite.Equal(int64(9100), credit[0].NetAmountInCollectiveCurrency)
	suite.NoError(accounting.ValidateGroupBalance(rows))
}

func (suite *LedgerServiceTestSuite) TestValidatePayload_StoresNothing() {
	ctx := context.Background()

	suite.NoError(suite.service.ValidatePayload(ctx, suite.contribution(10000)))

	tooMuch := suite.contribution(1000)
	tooMuch.Fees = domain.FeeBreakdown{HostFee: 5000}
	suite.ErrorIs(suite.service.ValidatePayload(ctx, tooMuch), apperrors.ErrValidation)

	derived := suite.contribution(1000)
	derived.Kind = domain.KindPlatformTipDebt
	suite.ErrorIs(suite.service.ValidatePayload(ctx, derived), apperrors.ErrValidation)

	suite.Zero(suite.txManager.begun)
	suite.txnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_TipAcrossCurrenciesCreatesDebt() {
	suite.fx.On("GetFxRate", mock.Anything, "EUR", "USD", suite.now).Return(decimal.RequireFromString("1.1"), nil).Once()
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	var settlements []domain.TransactionSettlement
	suite.settlementRepo.On("CreateSettlementsInTx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { settlements = args.Get(2).([]domain.TransactionSettlement) }).
		Return(nil).Once()

	payload := suite.contribution(5500)
	payload.Currency = "EUR"
	payload.HostCurrency = "EUR"
	payload.PlatformTipAmount = 500
	payload.Data = map[string]any{domain.DataKeyIsFeesOnTop: true}

	rows, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 6)
	suite.NoError(accounting.ValidateGroupBalance(rows))

	tipCredit := rowsOfKind(rows, domain.KindPlatformTip, domain.Credit)[0]
	suite.Equal("USD", tipCredit.HostCurrency)
	suite.Equal(int64(550), tipCredit.AmountInHostCurrency)
	suite.Equal("1.1", tipCredit.Data[domain.DataKeyPlatformTipFxRate])

	debtCredits := rowsOfKind(rows, domain.KindPlatformTipDebt, domain.Credit)
	suite.Require().Len(debtCredits, 1)
	debt := debtCredits[0]
	suite.True(debt.IsDebt)
	suite.Equal(hostID, debt.CollectiveID)
	suite.Equal(platformID, debt.FromCollectiveID)
	suite.Equal(int64(500), debt.Amount)
	suite.Equal("EUR", debt.Currency)

	suite.Require().Len(settlements, 1)
	suite.Equal(debt.ID, settlements[0].TransactionID)
	suite.Equal(hostID, settlements[0].HostCollectiveID)
	suite.Equal(domain.SettlementOwed, settlements[0].Status)
	suite.Equal(1, suite.txManager.commits)
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_TipCollectedByHostCreatesDebt() {
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.settlementRepo.On("CreateSettlementsInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(s []domain.TransactionSettlement) bool {
		return len(s) == 1 && s[0].Kind == domain.KindPlatformTipDebt
	})).Return(nil).Once()

	payload := suite.contribution(2000)
	payload.PlatformTipAmount = 200
	payload.Data = map[string]any{domain.DataKeyIsFeesOnTop: true, domain.DataKeyTipCollectedByHost: true}

	rows, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.Require().NoError(err)
	suite.Len(rows, 6)
	suite.settlementRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_RollsBackWhenDebtFails() {
	suite.fx.On("GetFxRate", mock.Anything, "EUR", "USD", suite.now).Return(decimal.RequireFromString("1.1"), nil).Once()
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	dbErr := errors.New("connection reset")
	suite.settlementRepo.On("CreateSettlementsInTx", mock.Anything, mock.Anything, mock.Anything).Return(dbErr).Once()

	payload := suite.contribution(5500)
	payload.Currency = "EUR"
	payload.HostCurrency = "EUR"
	payload.PlatformTipAmount = 500
	payload.Data = map[string]any{domain.DataKeyIsFeesOnTop: true}

	rows, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.Nil(rows)
	suite.ErrorIs(err, dbErr)
	suite.Equal(0, suite.txManager.commits)
	suite.Equal(1, suite.txManager.rollbacks)
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_RejectsDerivedKinds() {
	payload := suite.contribution(1000)
	payload.Kind = domain.KindPlatformTipDebt

	_, err := suite.service.CreateFromPayload(context.Background(), payload)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(1, suite.txManager.rollbacks)
}

func (suite *LedgerServiceTestSuite) TestCreateFromPayload_TipWithoutPlatformAccount() {
	svc := services.NewLedgerService(suite.txManager, suite.txnRepo, suite.settlementRepo, suite.fx)
	payload := suite.contribution(1100)
	payload.PlatformTipAmount = 100
	payload.Data = map[string]any{domain.DataKeyIsFeesOnTop: true}

	_, err := svc.CreateFromPayload(context.Background(), payload)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "platform account")
}

func (suite *LedgerServiceTestSuite) originalGroup() []domain.Transaction {
	host := hostID
	order := "order-1"
	credit := domain.Transaction{
		ID: "credit-1", Type: domain.Credit, Kind: domain.KindContribution, TransactionGroup: "group-1",
		Description: "Monthly donation", Amount: 10000, Currency: "USD", HostCurrency: "USD",
		HostCurrencyFxRate: decimal.NewFromInt(1), AmountInHostCurrency: 10000, NetAmountInCollectiveCurrency: 9500,
		HostFeeInHostCurrency: -500, CollectiveID: collectiveID, FromCollectiveID: contributorID,
		HostCollectiveID: &host, OrderID: &order,
	}
	debit := credit
	debit.ID = "debit-1"
	debit.Type = domain.Debit
	debit.Amount = -10000
	debit.AmountInHostCurrency = -10000
	debit.NetAmountInCollectiveCurrency = -9500
	debit.CollectiveID, debit.FromCollectiveID = contributorID, collectiveID
	return []domain.Transaction{credit, debit}
}

func (suite *LedgerServiceTestSuite) TestRefund_InvertsPairs() {
	ctx := context.Background()
	group := suite.originalGroup()
	suite.txnRepo.On("FindTransactionByID", ctx, "debit-1").Return(&group[1], nil).Once()
	suite.txnRepo.On("FindTransactionsByGroup", ctx, "group-1").Return(group, nil).Once()
	suite.txnRepo.On("HasRefundInTx", mock.Anything, mock.Anything, "credit-1").Return(false, nil).Once()
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rows, err := suite.service.Refund(ctx, "debit-1", "admin")

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	credit, debit := rows[0], rows[1]
	suite.True(credit.IsRefund)
	suite.True(debit.IsRefund)
	suite.Equal("credit-1", *credit.RefundTransactionID)
	suite.Equal("credit-1", *debit.RefundTransactionID)
	suite.NotEqual("group-1", credit.TransactionGroup)
	suite.Equal(contributorID, credit.CollectiveID)
	suite.Equal(int64(10000), credit.Amount)
	suite.Equal(int64(10000), credit.NetAmountInCollectiveCurrency)
	suite.Equal(int64(0), credit.HostFeeInHostCurrency)
	suite.Equal(collectiveID, debit.CollectiveID)
	suite.Equal(int64(-10000), debit.Amount)
	suite.Equal("admin", credit.CreatedBy)
	suite.NoError(accounting.ValidateGroupBalance(rows))
	suite.Equal(1, suite.txManager.commits)
}

func (suite *LedgerServiceTestSuite) TestRefund_AlreadyRefunded() {
	ctx := context.Background()
	group := suite.originalGroup()
	suite.txnRepo.On("FindTransactionByID", ctx, "credit-1").Return(&group[0], nil).Once()
	suite.txnRepo.On("FindTransactionsByGroup", ctx, "group-1").Return(group, nil).Once()
	suite.txnRepo.On("HasRefundInTx", mock.Anything, mock.Anything, "credit-1").Return(true, nil).Once()

	rows, err := suite.service.Refund(ctx, "credit-1", "admin")

	suite.Nil(rows)
	suite.ErrorIs(err, apperrors.ErrDomainConstraint)
	suite.Contains(err.Error(), "already been refunded")
	suite.txnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.Equal(1, suite.txManager.rollbacks)
}

func (suite *LedgerServiceTestSuite) TestRefund_ConcurrentRefundHitsUniqueIndex() {
	ctx := context.Background()
	group := suite.originalGroup()
	suite.txnRepo.On("FindTransactionByID", ctx, "credit-1").Return(&group[0], nil).Once()
	suite.txnRepo.On("FindTransactionsByGroup", ctx, "group-1").Return(group, nil).Once()
	suite.txnRepo.On("HasRefundInTx", mock.Anything, mock.Anything, "credit-1").Return(false, nil).Once()
	suite.txnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.Refund(ctx, "credit-1", "admin")

	suite.ErrorIs(err, apperrors.ErrDomainConstraint)
}

func (suite *LedgerServiceTestSuite) TestRefund_OfRefundRejected() {
	ctx := context.Background()
	refund := suite.originalGroup()[0]
	refund.IsRefund = true
	refund.RefundTransactionID = strPtr("credit-0")
	suite.txnRepo.On("FindTransactionByID", ctx, "credit-1").Return(&refund, nil).Once()

	_, err := suite.service.Refund(ctx, "credit-1", "admin")

	suite.ErrorIs(err, apperrors.ErrDomainConstraint)
	suite.Equal(0, suite.txManager.begun)
}

func (suite *LedgerServiceTestSuite) TestGetTransactionGroup_NotFound() {
	ctx := context.Background()
	suite.txnRepo.On("FindTransactionsByGroup", ctx, "missing").Return([]domain.Transaction{}, nil).Once()

	_, err := suite.service.GetTransactionGroup(ctx, "missing")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestListTransactionsByCollective_DefaultsLimit() {
	ctx := context.Background()
	suite.txnRepo.On("ListTransactionsByCollective", ctx, collectiveID, 20, (*string)(nil)).
		Return([]domain.Transaction{}, "next-page", nil).Once()

	resp, err := suite.service.ListTransactionsByCollective(ctx, collectiveID, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Empty(resp.Transactions)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("next-page", *resp.NextToken)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
