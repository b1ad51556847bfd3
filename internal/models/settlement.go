package models

import "time"

// TransactionSettlement is a row of transaction_settlements, keyed by the debt row it tracks.
type TransactionSettlement struct {
	TransactionID       string    `json:"transactionID"`
	TransactionGroup    string    `json:"transactionGroup"`
	HostCollectiveID    string    `json:"hostCollectiveID"`
	Kind                string    `json:"kind"`
	Status              string    `json:"status"` // OWED, INVOICED or SETTLED
	SettlementExpenseID *string   `json:"settlementExpenseID"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
