package domain

// PlanPricing holds the monthly price of a plan, what it includes and what extra usage costs.
// Amounts are in minor units of Currency.
type PlanPricing struct {
	Currency                     string `json:"currency" validate:"required,len=3,uppercase"`
	PricePerMonth                int64  `json:"pricePerMonth" validate:"gte=0"`
	IncludedCollectives          int64  `json:"includedCollectives" validate:"gte=0"`
	IncludedExpensesPerMonth     int64  `json:"includedExpensesPerMonth" validate:"gte=0"`
	PricePerAdditionalCollective int64  `json:"pricePerAdditionalCollective" validate:"gte=0"`
	PricePerAdditionalExpense    int64  `json:"pricePerAdditionalExpense" validate:"gte=0"`
}

// Plan is the descriptor stored with each subscription. It is copied, not referenced,
// so that later plan edits never change past billing.
type Plan struct {
	ID      string      `json:"id" validate:"required"`
	Title   string      `json:"title" validate:"required"`
	Pricing PlanPricing `json:"pricing" validate:"required"`
}
