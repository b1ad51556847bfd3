package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillingPeriod is one calendar month, in UTC.
type BillingPeriod struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewBillingPeriod validates year and month.
func NewBillingPeriod(year, month int) (BillingPeriod, error) {
	if month < 1 || month > 12 {
		return BillingPeriod{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 2000 || year > 9999 {
		return BillingPeriod{}, fmt.Errorf("year %d is out of range", year)
	}
	return BillingPeriod{Year: year, Month: time.Month(month)}, nil
}

// BillingPeriodOf returns the month containing t.
func BillingPeriodOf(t time.Time) BillingPeriod {
	t = t.UTC()
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

// Start is the first instant of the month.
func (b BillingPeriod) Start() time.Time {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive).
func (b BillingPeriod) End() time.Time {
	return b.Start().AddDate(0, 1, 0)
}

// Days is the number of calendar days in the month.
func (b BillingPeriod) Days() int {
	return int(b.End().Sub(b.Start()).Hours() / 24)
}

// Period returns the month as [start, end).
func (b BillingPeriod) Period() Period {
	return NewHalfOpenPeriod(b.Start(), b.End())
}

// ProrationFactor returns the fraction of the month covered by p, measured in
// fractional days over the number of days in the month.
func (b BillingPeriod) ProrationFactor(p Period) decimal.Decimal {
	covered := p.OverlapDuration(b.Start(), b.End())
	if covered <= 0 {
		return decimal.Zero
	}
	coveredDays := decimal.NewFromInt(covered.Milliseconds()).Div(decimal.NewFromInt((24 * time.Hour).Milliseconds()))
	return coveredDays.Div(decimal.NewFromInt(int64(b.Days())))
}

func (b BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}

// Utilization counts billable usage in a billing period.
type Utilization struct {
	ActiveCollectives int64 `json:"activeCollectives"`
	ExpensesPaid      int64 `json:"expensesPaid"`
}

// UsageAmounts are the amounts charged per usage metric, in minor units.
type UsageAmounts struct {
	ActiveCollectives int64 `json:"activeCollectives"`
	ExpensesPaid      int64 `json:"expensesPaid"`
}

// AdditionalUsage is the usage above what the plans included, and its price.
type AdditionalUsage struct {
	Utilization Utilization  `json:"utilization"`
	Amounts     UsageAmounts `json:"amounts"`
	Total       int64        `json:"total"`
}

// SubscriptionCharge is the prorated share of one subscription in a billing period.
type SubscriptionCharge struct {
	SubscriptionID  string          `json:"subscriptionId"`
	PlanID          string          `json:"planId"`
	PlanTitle       string          `json:"planTitle"`
	ProrationFactor decimal.Decimal `json:"prorationFactor"`
	BaseAmount      int64           `json:"baseAmount"`
}

// Billing is the amount a host owes for a billing period.
type Billing struct {
	HostID        string               `json:"hostId"`
	BillingPeriod BillingPeriod        `json:"billingPeriod"`
	Currency      string               `json:"currency"`
	Subscriptions []SubscriptionCharge `json:"subscriptions"`
	Utilization   Utilization          `json:"utilization"`
	Additional    AdditionalUsage      `json:"additional"`
	BaseAmount    int64                `json:"baseAmount"`
	TotalAmount   int64                `json:"totalAmount"`
}
