package models

import "time"

// Activity is an append-only row of the activities table.
type Activity struct {
	ActivityID       string         `json:"activityID"`
	Type             string         `json:"type"`
	CollectiveID     string         `json:"collectiveID"`
	HostCollectiveID *string        `json:"hostCollectiveID"`
	ExpenseID        *string        `json:"expenseID"`
	TransactionID    *string        `json:"transactionID"`
	Data             map[string]any `json:"data"`
	CreatedBy        string         `json:"createdBy"`
	CreatedAt        time.Time      `json:"createdAt"`
}
