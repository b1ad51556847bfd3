package dto

import (
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
)

// PlanRequest describes the plan assigned to a host.
type PlanRequest struct {
	ID                           string `json:"id" binding:"required"`
	Title                        string `json:"title" binding:"required"`
	Currency                     string `json:"currency" binding:"required,len=3,uppercase"`
	PricePerMonth                int64  `json:"pricePerMonth" binding:"gte=0"`
	IncludedCollectives          int64  `json:"includedCollectives" binding:"gte=0"`
	IncludedExpensesPerMonth     int64  `json:"includedExpensesPerMonth" binding:"gte=0"`
	PricePerAdditionalCollective int64  `json:"pricePerAdditionalCollective" binding:"gte=0"`
	PricePerAdditionalExpense    int64  `json:"pricePerAdditionalExpense" binding:"gte=0"`
}

// ToDomain converts the request into a plan descriptor.
func (p PlanRequest) ToDomain() domain.Plan {
	return domain.Plan{
		ID:    p.ID,
		Title: p.Title,
		Pricing: domain.PlanPricing{
			Currency:                     p.Currency,
			PricePerMonth:                p.PricePerMonth,
			IncludedCollectives:          p.IncludedCollectives,
			IncludedExpensesPerMonth:     p.IncludedExpensesPerMonth,
			PricePerAdditionalCollective: p.PricePerAdditionalCollective,
			PricePerAdditionalExpense:    p.PricePerAdditionalExpense,
		},
	}
}

// SubscriptionChangeRequest creates or replaces a host subscription from an instant.
// When EffectiveAt is omitted the change takes effect immediately.
type SubscriptionChangeRequest struct {
	EffectiveAt *time.Time  `json:"effectiveAt,omitempty"`
	Plan        PlanRequest `json:"plan" binding:"required"`
}

// BillingPeriodQuery selects a calendar month.
type BillingPeriodQuery struct {
	Year  int `form:"year" binding:"required,min=2000,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}
