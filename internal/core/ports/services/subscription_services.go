package services

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
)

// SubscriptionWriterSvc changes the plan of a host
type SubscriptionWriterSvc interface {
	// CreateSubscription opens [start, infinity] for the host. Overlaps fail with ErrDomainConstraint.
	CreateSubscription(ctx context.Context, hostID string, start time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error)

	// ReplaceCurrentSubscription closes the current subscription at cut and opens a new one there.
	ReplaceCurrentSubscription(ctx context.Context, hostID string, cut time.Time, plan domain.Plan, actorID string) (*domain.PlatformSubscription, error)
}

// SubscriptionReaderSvc reads subscriptions
type SubscriptionReaderSvc interface {
	GetCurrentSubscription(ctx context.Context, hostID string, at time.Time) (*domain.PlatformSubscription, error)
	GetSubscriptionsInBillingPeriod(ctx context.Context, hostID string, period domain.BillingPeriod) ([]domain.PlatformSubscription, error)
}

// BillingSvc computes usage and the amount owed for a month
type BillingSvc interface {
	CalculateUtilization(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Utilization, error)
	CalculateBilling(ctx context.Context, hostID string, period domain.BillingPeriod) (*domain.Billing, error)
}

// SubscriptionSvcFacade combines all subscription and billing interfaces
type SubscriptionSvcFacade interface {
	SubscriptionWriterSvc
	SubscriptionReaderSvc
	BillingSvc
}
