package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type subscriptionService struct {
	BaseService
	txManager        portsrepo.TransactionManager
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade
	usageRepo        portsrepo.UsageReader
	activityRepo     portsrepo.ActivityWriter
	metrics          *metrics.Registry
	now              func() time.Time
}

// SubscriptionOption is a functional option for configuring the subscription service
type SubscriptionOption func(*subscriptionService)

// WithSubscriptionMetrics records subscription changes in reg.
func WithSubscriptionMetrics(reg *metrics.Registry) SubscriptionOption {
	return func(s *subscriptionService) {
		s.metrics = reg
	}
}

// WithSubscriptionClock overrides the time source.
func WithSubscriptionClock(now func() time.Time) SubscriptionOption {
	return func(s *subscriptionService) {
		s.now = now
	}
}

// NewSubscriptionService creates a new platform subscription and billing service
func NewSubscriptionService(
	txManager portsrepo.TransactionManager,
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade,
	usageRepo portsrepo.UsageReader,
	activityRepo portsrepo.ActivityWriter,
	options ...SubscriptionOption,
) portssvc.SubscriptionSvcFacade {
	svc := &subscriptionService{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		activityRepo:     activityRepo,
		now:              time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SubscriptionSvcFacade = (*subscriptionService)(nil)

// CreateSubscription opens [start, infinity] for the host.
func (s *subscriptionService) CreateSubscription(ctx context.Context, hostID string, start time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error) {
	if err := s.validateChange(hostID, plan); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if start.IsZero() {
		start = now
	}

	subscription := s.newSubscription(hostID, start.UTC(), plan, actorID, now)
	err := s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.insertInTx(ctx, tx, subscription); err != nil {
			return err
		}
		return s.activityRepo.CreateActivitiesInTx(ctx, tx, []domain.Activity{
			subscriptionActivity(subscription, nil, actorID, now),
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDomainConstraint) {
			s.LogError(ctx, err, "Failed to create platform subscription", slog.String("host_id", hostID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Platform subscription created",
		slog.String("host_id", hostID),
		slog.String("subscription_id", subscription.ID),
		slog.String("plan_id", plan.ID),
		slog.Time("start", subscription.Period.Start.Value))
	s.metrics.SubscriptionChanged("create")
	return &subscription, nil
}

// ReplaceCurrentSubscription closes the subscription active at cut and opens a new one
// starting at cut. A host without a current subscription simply gets a new one.
func (s *subscriptionService) ReplaceCurrentSubscription(ctx context.Context, hostID string, cut time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error) {
	if err := s.validateChange(hostID, plan); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if cut.IsZero() {
		cut = now
	}
	cut = cut.UTC()

	current, err := s.subscriptionRepo.FindCurrentSubscription(ctx, hostID, cut)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.CreateSubscription(ctx, hostID, cut, plan, actorID)
		}
		return nil, err
	}
	if !cut.After(current.Period.Start.Value) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cut %s must be after the start of the current subscription (%s)",
			cut.Format(time.RFC3339), current.Period.Start.Value.Format(time.RFC3339)))
	}

	subscription := s.newSubscription(hostID, cut, plan, actorID, now)
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.subscriptionRepo.CloseSubscriptionInTx(ctx, tx, current.ID, domain.ExclusiveBound(cut), now, actorID); err != nil {
			return err
		}
		if err := s.insertInTx(ctx, tx, subscription); err != nil {
			return err
		}
		return s.activityRepo.CreateActivitiesInTx(ctx, tx, []domain.Activity{
			subscriptionActivity(subscription, &current.Plan, actorID, now),
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDomainConstraint) {
			s.LogError(ctx, err, "Failed to replace platform subscription", slog.String("host_id", hostID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Platform subscription replaced",
		slog.String("host_id", hostID),
		slog.String("previous_subscription_id", current.ID),
		slog.String("subscription_id", subscription.ID),
		slog.String("previous_plan_id", current.Plan.ID),
		slog.String("plan_id", plan.ID),
		slog.Time("cut", cut))
	s.metrics.SubscriptionChanged("replace")
	return &subscription, nil
}

// insertInTx checks for overlaps before inserting. The storage exclusion constraint
// still catches concurrent inserts that both pass the check.
func (s *subscriptionService) insertInTx(ctx context.Context, tx pgx.Tx, subscription domain.PlatformSubscription) error {
	overlapping, err := s.subscriptionRepo.HasOverlappingSubscriptionInTx(ctx, tx, subscription.CollectiveID, subscription.Period)
	if err != nil {
		return err
	}
	if overlapping {
		return overlapError(subscription)
	}
	if err := s.subscriptionRepo.CreateSubscriptionInTx(ctx, tx, subscription); err != nil {
		if errors.Is(err, apperrors.ErrDomainConstraint) || errors.Is(err, apperrors.ErrDuplicate) {
			return overlapError(subscription)
		}
		return err
	}
	return nil
}

func overlapError(subscription domain.PlatformSubscription) error {
	return apperrors.NewDomainConstraintError(fmt.Sprintf("host %s already has a subscription overlapping a period starting %s",
		subscription.CollectiveID, subscription.Period.Start.Value.Format(time.RFC3339)))
}

func (s *subscriptionService) validateChange(hostID string, plan domain.Plan) error {
	if hostID == "" {
		return apperrors.NewValidationError("host id is required")
	}
	if err := validate.Struct(plan); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid plan: %v", err))
	}
	return nil
}

func (s *subscriptionService) newSubscription(hostID string, start time.Time, plan domain.Plan, actorID string, now time.Time) domain.PlatformSubscription {
	return domain.PlatformSubscription{
		ID:           uuid.NewString(),
		CollectiveID: hostID,
		Period:       domain.NewOpenPeriod(start),
		Plan:         plan,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
}

func subscriptionActivity(subscription domain.PlatformSubscription, previous *domain.Plan, actorID string, at time.Time) domain.Activity {
	hostID := subscription.CollectiveID
	data := map[string]any{
		"subscriptionId": subscription.ID,
		"newPlan":        subscription.Plan,
		"effectiveAt":    subscription.Period.Start.Value,
	}
	if previous != nil {
		data["previousPlan"] = *previous
	}
	return domain.Activity{
		ID:               uuid.NewString(),
		Type:             domain.ActivityPlatformSubscriptionUpdated,
		CollectiveID:     hostID,
		HostCollectiveID: &hostID,
		Data:             data,
		CreatedBy:        actorID,
		CreatedAt:        at,
	}
}

// GetCurrentSubscription returns the subscription covering at, or now when at is zero.
func (s *subscriptionService) GetCurrentSubscription(ctx context.Context, hostID string, at time.Time) (*domain.PlatformSubscription, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.subscriptionRepo.FindCurrentSubscription(ctx, hostID, at.UTC())
}

// GetSubscriptionsInBillingPeriod returns every subscription intersecting the month, most recent first.
func (s *subscriptionService) GetSubscriptionsInBillingPeriod(ctx context.Context, hostID string, period domain.BillingPeriod) ([]domain.PlatformSubscription, error) {
	subscriptions, err := s.subscriptionRepo.FindSubscriptionsInPeriod(ctx, hostID, period.Start(), period.End())
	if err != nil {
		s.LogError(ctx, err, "Failed to find subscriptions in billing period",
			slog.String("host_id", hostID), slog.String("billing_period", period.String()))
		return nil, err
	}
	if subscriptions == nil {
		subscriptions = []domain.PlatformSubscription{}
	}
	return subscriptions, nil
}

// CalculateUtilization counts active collectives and paid expenses of the host in the month.
func (s *subscriptionService) CalculateUtilization(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Utilization, error) {
	if hostID == "" {
		return nil, apperrors.NewValidationError("host id is required")
	}
	from, to := period.Start(), period.End()

	activeCollectives, err := s.usageRepo.CountActiveCollectives(ctx, hostID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to count active collectives", slog.String("host_id", hostID))
		return nil, err
	}
	expensesPaid, err := s.usageRepo.CountExpensesPaid(ctx, hostID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to count paid expenses", slog.String("host_id", hostID))
		return nil, err
	}
	return &domain.Utilization{ActiveCollectives: activeCollectives, ExpensesPaid: expensesPaid}, nil
}

// CalculateBilling prorates the base price of every subscription active in the month by
// the fraction of the month it covered, and prices usage above the prorated included
// quotas with the overage prices of the most recent subscription.
func (s *subscriptionService) CalculateBilling(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Billing, error) {
	utilization, err := s.CalculateUtilization(ctx, hostID, period)
	if err != nil {
		return nil, err
	}
	subscriptions, err := s.GetSubscriptionsInBillingPeriod(ctx, hostID, period)
	if err != nil {
		return nil, err
	}

	billing := &domain.Billing{
		HostID:        hostID,
		BillingPeriod: period,
		Subscriptions: make([]domain.SubscriptionCharge, 0, len(subscriptions)),
		Utilization:   *utilization,
	}
	if len(subscriptions) == 0 {
		return billing, nil
	}

	includedCollectives := decimal.Zero
	includedExpenses := decimal.Zero
	for _, sub := range subscriptions {
		factor := period.ProrationFactor(sub.Period)
		base := decimal.NewFromInt(sub.Plan.Pricing.PricePerMonth).Mul(factor).Round(0).IntPart()
		billing.Subscriptions = append(billing.Subscriptions, domain.SubscriptionCharge{
			SubscriptionID:  sub.ID,
			PlanID:          sub.Plan.ID,
			PlanTitle:       sub.Plan.Title,
			ProrationFactor: factor,
			BaseAmount:      base,
		})
		billing.BaseAmount += base
		includedCollectives = includedCollectives.Add(decimal.NewFromInt(sub.Plan.Pricing.IncludedCollectives).Mul(factor))
		includedExpenses = includedExpenses.Add(decimal.NewFromInt(sub.Plan.Pricing.IncludedExpensesPerMonth).Mul(factor))
	}

	pricing := subscriptions[0].Plan.Pricing
	billing.Currency = pricing.Currency

	extra := domain.Utilization{
		ActiveCollectives: max(0, utilization.ActiveCollectives-includedCollectives.Round(0).IntPart()),
		ExpensesPaid:      max(0, utilization.ExpensesPaid-includedExpenses.Round(0).IntPart()),
	}
	amounts := domain.UsageAmounts{
		ActiveCollectives: extra.ActiveCollectives * pricing.PricePerAdditionalCollective,
		ExpensesPaid:      extra.ExpensesPaid * pricing.PricePerAdditionalExpense,
	}
	billing.Additional = domain.AdditionalUsage{
		Utilization: extra,
		Amounts:     amounts,
		Total:       amounts.ActiveCollectives + amounts.ExpensesPaid,
	}
	billing.TotalAmount = billing.BaseAmount + billing.Additional.Total

	s.LogDebug(ctx, "Billing calculated",
		slog.String("host_id", hostID),
		slog.String("billing_period", period.String()),
		slog.Int64("base_amount", billing.BaseAmount),
		slog.Int64("total_amount", billing.TotalAmount))
	return billing, nil
}
