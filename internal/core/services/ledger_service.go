package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/SscSPs/host_ledger/internal/utils/accounting"
	"github.com/SscSPs/host_ledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerService turns economic events into balanced ledger rows.
type ledgerService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	txnRepo        portsrepo.TransactionRepositoryFacade
	settlementRepo portsrepo.SettlementWriter
	fx             portssvc.FxRateReaderSvc

	platformCollectiveID string
	platformCurrency     string
	metrics              *metrics.Registry
	now                  func() time.Time
}

// LedgerOption is a functional option for configuring the ledger service
type LedgerOption func(*ledgerService)

// WithPlatformAccount sets the account receiving platform tips and its settlement currency.
func WithPlatformAccount(collectiveID, currency string) LedgerOption {
	return func(s *ledgerService) {
		s.platformCollectiveID = collectiveID
		s.platformCurrency = currency
	}
}

// WithLedgerMetrics records ledger events in reg.
func WithLedgerMetrics(reg *metrics.Registry) LedgerOption {
	return func(s *ledgerService) {
		s.metrics = reg
	}
}

// WithLedgerClock overrides the time source.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(
	txManager portsrepo.TransactionManager,
	txnRepo portsrepo.TransactionRepositoryFacade,
	settlementRepo portsrepo.SettlementWriter,
	fx portssvc.FxRateReaderSvc,
	options ...LedgerOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:        txManager,
		txnRepo:          txnRepo,
		settlementRepo:   settlementRepo,
		fx:               fx,
		platformCurrency: "USD",
		now:              time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateDoubleEntry records one CREDIT/DEBIT pair atomically.
func (s *ledgerService) CreateDoubleEntry(ctx context.Context, event domain.LedgerEvent) ([]domain.Transaction, error) {
	if event.HostCurrencyFxRate.IsZero() {
		rate, err := s.resolveFxRate(ctx, event.Currency, event.HostCurrency, s.eventTime(event.CreatedAt))
		if err != nil {
			return nil, err
		}
		event.HostCurrencyFxRate = rate
	}

	rows, err := s.buildPair(event)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateGroupBalance(rows); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	settlements := s.debtSettlements(rows)
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return s.persist(ctx, tx, rows, settlements)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record double entry", slog.String("kind", string(event.Kind)))
		return nil, err
	}

	s.recorded(ctx, event.Kind, rows)
	return rows, nil
}

// CreateFromPayload records every pair derived from the payload atomically.
func (s *ledgerService) CreateFromPayload(ctx context.Context, payload domain.LedgerPayload) ([]domain.Transaction, error) {
	var rows []domain.Transaction
	err := s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		rows, err = s.CreateFromPayloadInTx(ctx, tx, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateFromPayloadInTx derives the main pair and, with fees on top, the platform tip
// pair and the host debt pair, then writes them inside tx.
func (s *ledgerService) CreateFromPayloadInTx(ctx context.Context, tx pgx.Tx, payload domain.LedgerPayload) ([]domain.Transaction, error) {
	rows, err := s.buildFromPayload(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, tx, rows, s.debtSettlements(rows)); err != nil {
		s.LogError(ctx, err, "Failed to record ledger payload", slog.String("transaction_group", rows[0].TransactionGroup))
		return nil, err
	}

	s.recorded(ctx, payload.Kind, rows)
	return rows, nil
}

// ValidatePayload runs every check CreateFromPayload would run without storing anything.
func (s *ledgerService) ValidatePayload(ctx context.Context, payload domain.LedgerPayload) error {
	_, err := s.buildFromPayload(ctx, payload)
	return err
}

// buildFromPayload expands the payload into its balanced rows (main, tip, debt).
func (s *ledgerService) buildFromPayload(ctx context.Context, payload domain.LedgerPayload) ([]domain.Transaction, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid ledger payload: %v", err))
	}
	if payload.Kind == domain.KindPlatformTip || payload.Kind.IsDebtKind() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s rows are derived and cannot be recorded directly", payload.Kind))
	}

	at := s.eventTime(payload.CreatedAt)
	rate := payload.HostCurrencyFxRate
	if rate.IsZero() {
		var err error
		if rate, err = s.resolveFxRate(ctx, payload.Currency, payload.HostCurrency, at); err != nil {
			return nil, err
		}
	}

	group := uuid.NewString()
	mainAmount := payload.Amount
	fees := payload.Fees
	var tip int64
	if payload.IsFeesOnTop() && payload.PlatformTipAmount > 0 {
		if s.platformCollectiveID == "" {
			return nil, apperrors.NewValidationError("platform account is not configured, cannot record a platform tip")
		}
		tip = payload.PlatformTipAmount
		mainAmount -= tip
		fees.PlatformFee = 0
	}

	rows, err := s.buildPair(domain.LedgerEvent{
		Kind:               payload.Kind,
		Description:        payload.Description,
		CollectiveID:       payload.CollectiveID,
		FromCollectiveID:   payload.FromCollectiveID,
		HostCollectiveID:   payload.HostCollectiveID,
		Amount:             mainAmount,
		Currency:           payload.Currency,
		HostCurrency:       payload.HostCurrency,
		HostCurrencyFxRate: rate,
		Fees:               fees,
		OrderID:            payload.OrderID,
		ExpenseID:          payload.ExpenseID,
		TransactionGroup:   group,
		Data:               payload.Data,
		CreatedAt:          at,
		CreatedBy:          payload.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if tip > 0 {
		tipRows, err := s.buildTipPairs(ctx, payload, group, tip, rate, at)
		if err != nil {
			return nil, err
		}
		rows = append(rows, tipRows...)
	}

	if err := accounting.ValidateGroupBalance(rows); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return rows, nil
}

// buildTipPairs creates the contributor to platform tip pair, converted at the event time
// into the platform currency, and the debt pair when the host collected the tip.
func (s *ledgerService) buildTipPairs(ctx context.Context, payload domain.LedgerPayload, group string, tip int64, hostRate decimal.Decimal, at time.Time) ([]domain.Transaction, error) {
	tipRate, err := s.resolveFxRate(ctx, payload.Currency, s.platformCurrency, at)
	if err != nil {
		return nil, err
	}

	platformID := s.platformCollectiveID
	rows, err := s.buildPair(domain.LedgerEvent{
		Kind:               domain.KindPlatformTip,
		Description:        "Financial contribution to the platform",
		CollectiveID:       platformID,
		FromCollectiveID:   payload.FromCollectiveID,
		HostCollectiveID:   &platformID,
		Amount:             tip,
		Currency:           payload.Currency,
		HostCurrency:       s.platformCurrency,
		HostCurrencyFxRate: tipRate,
		OrderID:            payload.OrderID,
		TransactionGroup:   group,
		Data: map[string]any{
			domain.DataKeyIsFeesOnTop:       true,
			domain.DataKeyPlatformTipFxRate: tipRate.String(),
		},
		CreatedAt: at,
		CreatedBy: payload.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if payload.HostCollectiveID == nil || *payload.HostCollectiveID == platformID {
		return rows, nil
	}
	if payload.HostCurrency == s.platformCurrency && !payload.IsTipCollectedByHost() {
		return rows, nil
	}

	hostID := *payload.HostCollectiveID
	debtRows, err := s.buildPair(domain.LedgerEvent{
		Kind:               domain.KindPlatformTipDebt,
		Description:        "Platform tip collected by the host",
		CollectiveID:       hostID,
		FromCollectiveID:   platformID,
		HostCollectiveID:   &hostID,
		Amount:             accounting.ConvertAmount(tip, hostRate),
		Currency:           payload.HostCurrency,
		HostCurrency:       payload.HostCurrency,
		HostCurrencyFxRate: one,
		OrderID:            payload.OrderID,
		IsDebt:             true,
		TransactionGroup:   group,
		Data: map[string]any{
			domain.DataKeySettlementCurrency: payload.HostCurrency,
			domain.DataKeyPlatformTipFxRate:  tipRate.String(),
		},
		CreatedAt: at,
		CreatedBy: payload.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	return append(rows, debtRows...), nil
}

// buildPair computes one CREDIT row for the receiver and its mirrored DEBIT row for the payer.
func (s *ledgerService) buildPair(event domain.LedgerEvent) ([]domain.Transaction, error) {
	if err := validate.Struct(event); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid ledger event: %v", err))
	}
	if !event.HostCurrencyFxRate.IsPositive() {
		return nil, apperrors.NewValidationError("host currency fx rate must be positive")
	}

	amount := event.Amount
	collectiveID, fromCollectiveID := event.CollectiveID, event.FromCollectiveID
	if amount < 0 {
		amount = -amount
		collectiveID, fromCollectiveID = fromCollectiveID, collectiveID
	}

	// Platform fee is deducted along with host and processor fees.
	net := accounting.NetAmount(amount, event.Fees, event.HostCurrencyFxRate)
	if net < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("fees exceed the amount of %d %s, the group would not balance", amount, event.Currency))
	}

	group := event.TransactionGroup
	if group == "" {
		group = uuid.NewString()
	}
	createdAt := s.eventTime(event.CreatedAt)

	credit := domain.Transaction{
		ID:                                uuid.NewString(),
		Type:                              domain.Credit,
		Kind:                              event.Kind,
		TransactionGroup:                  group,
		Description:                       event.Description,
		Amount:                            amount,
		Currency:                          event.Currency,
		HostCurrency:                      event.HostCurrency,
		HostCurrencyFxRate:                event.HostCurrencyFxRate,
		AmountInHostCurrency:              accounting.ConvertAmount(amount, event.HostCurrencyFxRate),
		NetAmountInCollectiveCurrency:     net,
		PlatformFeeInHostCurrency:         -event.Fees.PlatformFee,
		HostFeeInHostCurrency:             -event.Fees.HostFee,
		PaymentProcessorFeeInHostCurrency: -event.Fees.PaymentProcessorFee,
		TaxAmount:                         -event.Fees.Tax,
		CollectiveID:                      collectiveID,
		FromCollectiveID:                  fromCollectiveID,
		HostCollectiveID:                  event.HostCollectiveID,
		OrderID:                           event.OrderID,
		ExpenseID:                         event.ExpenseID,
		IsDebt:                            event.IsDebt,
		Data:                              maps.Clone(event.Data),
		CreatedAt:                         createdAt,
		CreatedBy:                         event.CreatedBy,
	}

	debit := credit
	debit.ID = uuid.NewString()
	debit.Type = domain.Debit
	debit.Amount = -credit.Amount
	debit.AmountInHostCurrency = -credit.AmountInHostCurrency
	debit.NetAmountInCollectiveCurrency = -credit.NetAmountInCollectiveCurrency
	debit.CollectiveID = fromCollectiveID
	debit.FromCollectiveID = collectiveID
	debit.Data = maps.Clone(event.Data)

	for _, row := range []domain.Transaction{credit, debit} {
		if err := row.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	return []domain.Transaction{credit, debit}, nil
}

// debtSettlements opens an OWED settlement for every debt CREDIT row.
func (s *ledgerService) debtSettlements(rows []domain.Transaction) []domain.TransactionSettlement {
	var settlements []domain.TransactionSettlement
	for _, row := range rows {
		if !row.IsDebt || row.Type != domain.Credit || row.IsRefund {
			continue
		}
		settlements = append(settlements, domain.TransactionSettlement{
			TransactionID:    row.ID,
			TransactionGroup: row.TransactionGroup,
			HostCollectiveID: row.CollectiveID,
			Kind:             row.Kind,
			Status:           domain.SettlementOwed,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.CreatedAt,
		})
	}
	return settlements
}

func (s *ledgerService) persist(ctx context.Context, tx pgx.Tx, rows []domain.Transaction, settlements []domain.TransactionSettlement) error {
	if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, rows); err != nil {
		return err
	}
	if len(settlements) == 0 {
		return nil
	}
	return s.settlementRepo.CreateSettlementsInTx(ctx, tx, settlements)
}

// Refund records, in a new group, the inverse of every pair of the transaction's group.
func (s *ledgerService) Refund(ctx context.Context, transactionID string, actorID string) ([]domain.Transaction, error) {
	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.IsRefund {
		return nil, apperrors.NewDomainConstraintError(fmt.Sprintf("transaction %s is a refund and cannot be refunded", transactionID))
	}

	groupRows, err := s.txnRepo.FindTransactionsByGroup(ctx, original.TransactionGroup)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	refundGroup := uuid.NewString()
	var credits []domain.Transaction
	var rows []domain.Transaction
	for _, c := range groupRows {
		if c.Type != domain.Credit || c.IsRefund {
			continue
		}
		credits = append(credits, c)
		rows = append(rows, refundPair(c, refundGroup, now, actorID)...)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no refundable rows in transaction group %s", original.TransactionGroup))
	}
	if err := accounting.ValidateGroupBalance(rows); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		for _, c := range credits {
			refunded, err := s.txnRepo.HasRefundInTx(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			if refunded {
				return apperrors.NewDomainConstraintError(fmt.Sprintf("transaction %s has already been refunded", c.ID))
			}
		}
		if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, rows); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return apperrors.NewDomainConstraintError(fmt.Sprintf("transaction group %s has already been refunded", original.TransactionGroup))
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDomainConstraint) {
			s.LogError(ctx, err, "Failed to record refund", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Refund recorded",
		slog.String("transaction_id", transactionID),
		slog.String("refund_group", refundGroup),
		slog.Int("rows", len(rows)))
	s.metrics.LedgerEventRecorded("REFUND", len(rows))
	return rows, nil
}

// refundPair inverts one original pair: the payer is credited back the full amount and
// no fees are withheld.
func refundPair(c domain.Transaction, group string, at time.Time, actorID string) []domain.Transaction {
	originalID := c.ID
	data := map[string]any{domain.DataKeyRefundedGroup: c.TransactionGroup}
	if rate, ok := c.Data[domain.DataKeyPlatformTipFxRate]; ok {
		data[domain.DataKeyPlatformTipFxRate] = rate
	}

	credit := domain.Transaction{
		ID:                            uuid.NewString(),
		Type:                          domain.Credit,
		Kind:                          c.Kind,
		TransactionGroup:              group,
		Description:                   "Refund of \"" + c.Description + "\"",
		Amount:                        c.Amount,
		Currency:                      c.Currency,
		HostCurrency:                  c.HostCurrency,
		HostCurrencyFxRate:            c.HostCurrencyFxRate,
		AmountInHostCurrency:          c.AmountInHostCurrency,
		NetAmountInCollectiveCurrency: c.Amount,
		CollectiveID:                  c.FromCollectiveID,
		FromCollectiveID:              c.CollectiveID,
		HostCollectiveID:              c.HostCollectiveID,
		OrderID:                       c.OrderID,
		ExpenseID:                     c.ExpenseID,
		IsDebt:                        c.IsDebt,
		IsRefund:                      true,
		RefundTransactionID:           &originalID,
		Data:                          data,
		CreatedAt:                     at,
		CreatedBy:                     actorID,
	}

	debit := credit
	debit.ID = uuid.NewString()
	debit.Type = domain.Debit
	debit.Amount = -credit.Amount
	debit.AmountInHostCurrency = -credit.AmountInHostCurrency
	debit.NetAmountInCollectiveCurrency = -credit.NetAmountInCollectiveCurrency
	debit.CollectiveID = credit.FromCollectiveID
	debit.FromCollectiveID = credit.CollectiveID
	debit.Data = maps.Clone(data)

	return []domain.Transaction{credit, debit}
}

// GetTransactionGroup returns every row of one economic event.
func (s *ledgerService) GetTransactionGroup(ctx context.Context, transactionGroup string) ([]domain.Transaction, error) {
	rows, err := s.txnRepo.FindTransactionsByGroup(ctx, transactionGroup)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction group %s not found", transactionGroup))
	}
	return rows, nil
}

// ListTransactionsByCollective returns a page of rows booked on a collective.
func (s *ledgerService) ListTransactionsByCollective(ctx context.Context, collectiveID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	rows, next, err := s.txnRepo.ListTransactionsByCollective(ctx, collectiveID, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list transactions", slog.String("collective_id", collectiveID))
		}
		return nil, err
	}
	if rows == nil {
		rows = []domain.Transaction{}
	}
	return &dto.ListTransactionsResponse{Transactions: rows, NextToken: next}, nil
}

func (s *ledgerService) resolveFxRate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	if from == to {
		return one, nil
	}
	rate, err := s.fx.GetFxRate(ctx, from, to, at)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.NewValidationError(fmt.Sprintf("no exchange rate from %s to %s", from, to))
		}
		return decimal.Zero, err
	}
	return rate, nil
}

func (s *ledgerService) eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}

func (s *ledgerService) recorded(ctx context.Context, kind domain.TransactionKind, rows []domain.Transaction) {
	group := ""
	if len(rows) > 0 {
		group = rows[0].TransactionGroup
	}
	s.LogInfo(ctx, "Ledger event recorded",
		slog.String("kind", string(kind)),
		slog.String("transaction_group", group),
		slog.Int("rows", len(rows)))
	s.metrics.LedgerEventRecorded(string(kind), len(rows))
}
