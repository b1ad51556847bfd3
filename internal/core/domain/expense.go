package domain

import "time"

// ExpenseType distinguishes expense flavours that the ledger cares about.
type ExpenseType string

const (
	ExpenseTypeInvoice    ExpenseType = "INVOICE"
	ExpenseTypeSettlement ExpenseType = "SETTLEMENT"
)

// ExpenseStatus is the state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusPending ExpenseStatus = "PENDING"
	ExpenseStatusPaid    ExpenseStatus = "PAID"
)

// Expense is a request for money paid out by a collective. Settlement expenses are
// submitted by the platform to a host to collect owed platform tips.
type Expense struct {
	ID               string         `json:"id"`
	Type             ExpenseType    `json:"type"`
	Status           ExpenseStatus  `json:"status"`
	CollectiveID     string         `json:"collectiveId"`
	FromCollectiveID string         `json:"fromCollectiveId"`
	Amount           int64          `json:"amount"`
	Currency         string         `json:"currency"`
	Description      string         `json:"description"`
	Data             map[string]any `json:"data,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}
