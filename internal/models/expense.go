package models

import "time"

// Expense is a row of the expenses table.
type Expense struct {
	ExpenseID        string         `json:"expenseID"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	CollectiveID     string         `json:"collectiveID"`
	FromCollectiveID string         `json:"fromCollectiveID"`
	Amount           int64          `json:"amount"`
	Currency         string         `json:"currency"`
	Description      string         `json:"description"`
	Data             map[string]any `json:"data"`
	CreatedAt        time.Time      `json:"createdAt"`
}
