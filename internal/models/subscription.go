package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PlanPricing mirrors the pricing object stored inside the plan jsonb column.
type PlanPricing struct {
	Currency                     string `json:"currency"`
	PricePerMonth                int64  `json:"pricePerMonth"`
	IncludedCollectives          int64  `json:"includedCollectives"`
	IncludedExpensesPerMonth     int64  `json:"includedExpensesPerMonth"`
	PricePerAdditionalCollective int64  `json:"pricePerAdditionalCollective"`
	PricePerAdditionalExpense    int64  `json:"pricePerAdditionalExpense"`
}

// Plan is stored as a snapshot on every subscription so later plan edits do not rewrite history.
type Plan struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Pricing PlanPricing `json:"pricing"`
}

// PlatformSubscription is a row of platform_subscriptions. Period is a tstzrange.
type PlatformSubscription struct {
	SubscriptionID string                           `json:"subscriptionID"`
	CollectiveID   string                           `json:"collectiveID"`
	Period         pgtype.Range[pgtype.Timestamptz] `json:"period"`
	Plan           Plan                             `json:"plan"` // jsonb
	DeletedAt      *time.Time                       `json:"deletedAt"`
	AuditFields
}
