package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// paymentService processes order payments: it takes the order lock, charges the
// provider and records the ledger event together with the order status change.
type paymentService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	orderRepo      portsrepo.OrderRepositoryFacade
	collectiveRepo portsrepo.CollectiveReader
	activityRepo   portsrepo.ActivityWriter
	ledger         portssvc.LedgerWriterSvc
	fx             portssvc.FxRateReaderSvc
	locks          portssvc.OrderLockSvc
	providers      map[string]portssvc.PaymentProvider
	now            func() time.Time
}

// PaymentOption is a functional option for configuring the payment service
type PaymentOption func(*paymentService)

// WithPaymentProviders registers the providers orders can be charged through.
func WithPaymentProviders(providers ...portssvc.PaymentProvider) PaymentOption {
	return func(s *paymentService) {
		for _, p := range providers {
			s.providers[strings.ToLower(p.Name())] = p
		}
	}
}

// WithPaymentClock overrides the time source.
func WithPaymentClock(now func() time.Time) PaymentOption {
	return func(s *paymentService) {
		s.now = now
	}
}

// NewPaymentService creates a new payment service with the provided options
func NewPaymentService(
	txManager portsrepo.TransactionManager,
	orderRepo portsrepo.OrderRepositoryFacade,
	collectiveRepo portsrepo.CollectiveReader,
	activityRepo portsrepo.ActivityWriter,
	ledger portssvc.LedgerWriterSvc,
	fx portssvc.FxRateReaderSvc,
	locks portssvc.OrderLockSvc,
	options ...PaymentOption,
) portssvc.PaymentSvc {
	svc := &paymentService{
		txManager:      txManager,
		orderRepo:      orderRepo,
		collectiveRepo: collectiveRepo,
		activityRepo:   activityRepo,
		ledger:         ledger,
		fx:             fx,
		locks:          locks,
		providers:      make(map[string]portssvc.PaymentProvider),
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PaymentSvc = (*paymentService)(nil)

// GetOrder returns an order by id.
func (s *paymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required")
	}
	return s.orderRepo.FindOrderByID(ctx, orderID)
}

// ProcessOrderPayment charges the order through the requested provider while holding the
// order lock. The provider is called outside any storage transaction; the ledger rows,
// the PAID status and the activity are then written in one.
func (s *paymentService) ProcessOrderPayment(ctx context.Context, orderID string, req dto.ProcessOrderPaymentRequest, actorID string) (*dto.ProcessOrderPaymentResponse, error) {
	provider, ok := s.providers[strings.ToLower(req.Provider)]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment provider %q", req.Provider))
	}

	var opts []portssvc.LockOption
	if req.Retries > 0 {
		opts = append(opts, portssvc.WithRetries(req.Retries, time.Duration(req.RetryDelayMs)*time.Millisecond))
	}

	var resp *dto.ProcessOrderPaymentResponse
	err := s.locks.Lock(ctx, orderID, func(ctx context.Context) error {
		var err error
		resp, err = s.processLocked(ctx, orderID, provider, req, actorID)
		return err
	}, opts...)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *paymentService) processLocked(ctx context.Context, orderID string, provider portssvc.PaymentProvider, req dto.ProcessOrderPaymentRequest, actorID string) (*dto.ProcessOrderPaymentResponse, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusPaid {
		return nil, apperrors.NewDomainConstraintError(fmt.Sprintf("order %s is already paid", orderID))
	}
	if !order.Status.AcceptsPayment() {
		return nil, apperrors.NewDomainConstraintError(fmt.Sprintf("order %s cannot be paid in status %s", orderID, order.Status))
	}
	if req.Amount != nil && *req.Amount != order.TotalAmount {
		return nil, apperrors.NewValidationError(fmt.Sprintf("amount %d does not match the order total %d", *req.Amount, order.TotalAmount))
	}
	if req.Currency != "" && req.Currency != order.Currency {
		return nil, apperrors.NewValidationError(fmt.Sprintf("currency %s does not match the order currency %s", req.Currency, order.Currency))
	}

	host, err := s.resolveHost(ctx, order.CollectiveID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rate, err := s.fx.GetFxRate(ctx, order.Currency, host.Currency, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("no exchange rate from %s to %s", order.Currency, host.Currency))
		}
		return nil, err
	}

	// Rejects fee breakdowns the ledger would refuse before any money moves.
	if err := s.ledger.ValidatePayload(ctx, s.buildPayload(order, host, req, &portssvc.ChargeResult{}, rate, now, actorID)); err != nil {
		return nil, err
	}

	logger := s.GetLogger(ctx).With(slog.String("order_id", orderID), slog.String("provider", provider.Name()))

	charge, err := provider.Charge(ctx, portssvc.ChargeRequest{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var providerErr *apperrors.ProviderError
		if !errors.As(err, &providerErr) {
			err = &apperrors.ProviderError{Provider: provider.Name(), Message: "charge failed", Err: err}
		}
		logger.Warn("Payment provider charge failed", slog.String("error", err.Error()))
		return nil, err
	}

	payload := s.buildPayload(order, host, req, charge, rate, now, actorID)

	var group string
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		rows, err := s.ledger.CreateFromPayloadInTx(ctx, tx, payload)
		if err != nil {
			return err
		}
		group = rows[0].TransactionGroup
		if err := s.orderRepo.UpdateOrderStatusInTx(ctx, tx, order.ID, domain.OrderStatusPaid, now); err != nil {
			return err
		}
		hostID := host.ID
		return s.activityRepo.CreateActivitiesInTx(ctx, tx, []domain.Activity{{
			ID:               uuid.NewString(),
			Type:             domain.ActivityOrderProcessed,
			CollectiveID:     order.CollectiveID,
			HostCollectiveID: &hostID,
			Data: map[string]any{
				"orderId":          order.ID,
				"transactionGroup": group,
				"provider":         provider.Name(),
				"reference":        charge.Reference,
			},
			CreatedBy: actorID,
			CreatedAt: now,
		}})
	})
	if err != nil {
		// The provider already collected the money; this needs manual reconciliation.
		logger.Error("Charge succeeded but recording it failed",
			slog.String("provider_reference", charge.Reference),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Order payment processed",
		slog.String("transaction_group", group),
		slog.String("provider_reference", charge.Reference))
	return &dto.ProcessOrderPaymentResponse{
		OrderID:          order.ID,
		Status:           string(domain.OrderStatusPaid),
		TransactionGroup: group,
		ProviderRef:      charge.Reference,
	}, nil
}

// resolveHost returns the host of the collective. A host collects for itself.
func (s *paymentService) resolveHost(ctx context.Context, collectiveID string) (*domain.Collective, error) {
	collective, err := s.collectiveRepo.FindCollectiveByID(ctx, collectiveID)
	if err != nil {
		return nil, err
	}
	if collective.HostCollectiveID == nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("collective %s has no host and cannot receive payments", collectiveID))
	}
	if *collective.HostCollectiveID == collective.ID {
		return collective, nil
	}
	return s.collectiveRepo.FindCollectiveByID(ctx, *collective.HostCollectiveID)
}

func (s *paymentService) buildPayload(order *domain.Order, host *domain.Collective, req dto.ProcessOrderPaymentRequest, charge *portssvc.ChargeResult, rate decimal.Decimal, at time.Time, actorID string) domain.LedgerPayload {
	fees := domain.FeeBreakdown{
		HostFee:             req.HostFee,
		PaymentProcessorFee: req.PaymentProcessorFee,
		PlatformFee:         req.PlatformFee,
		Tax:                 req.Tax,
	}
	if charge.ProcessorFee > 0 {
		fees.PaymentProcessorFee = accounting.ConvertAmount(charge.ProcessorFee, rate)
	}

	tip := order.PlatformTipAmount
	if req.PlatformTipAmount != nil {
		tip = *req.PlatformTipAmount
	}
	data := maps.Clone(charge.Data)
	if data == nil {
		data = make(map[string]any)
	}
	data[domain.DataKeyProviderReference] = charge.Reference
	if req.IsFeesOnTop {
		data[domain.DataKeyIsFeesOnTop] = true
	} else {
		tip = 0
	}

	hostID := host.ID
	orderID := order.ID
	return domain.LedgerPayload{
		Kind:               domain.KindContribution,
		Description:        order.Description,
		CollectiveID:       order.CollectiveID,
		FromCollectiveID:   order.FromCollectiveID,
		HostCollectiveID:   &hostID,
		OrderID:            &orderID,
		Amount:             order.TotalAmount,
		Currency:           order.Currency,
		HostCurrency:       host.Currency,
		HostCurrencyFxRate: rate,
		Fees:               fees,
		PlatformTipAmount:  tip,
		Data:               data,
		CreatedAt:          at,
		CreatedBy:          actorID,
	}
}
