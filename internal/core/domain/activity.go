package domain

import "time"

// ActivityType names an audit event consumed by notification collaborators.
type ActivityType string

const (
	ActivityPlatformSubscriptionUpdated       ActivityType = "PLATFORM_SUBSCRIPTION_UPDATED"
	ActivityTransactionSettlementStatusUpdate ActivityType = "TRANSACTION_SETTLEMENT_STATUS_UPDATED"
	ActivityCollectiveExpensePaid             ActivityType = "COLLECTIVE_EXPENSE_PAID"
	ActivityOrderProcessed                    ActivityType = "ORDER_PROCESSED"
)

// Activity is an append-only audit record.
type Activity struct {
	ID               string         `json:"id"`
	Type             ActivityType   `json:"type"`
	CollectiveID     string         `json:"collectiveId"`
	HostCollectiveID *string        `json:"hostCollectiveId,omitempty"`
	ExpenseID        *string        `json:"expenseId,omitempty"`
	TransactionID    *string        `json:"transactionId,omitempty"`
	Data             map[string]any `json:"data,omitempty"`
	CreatedBy        string         `json:"createdBy"`
	CreatedAt        time.Time      `json:"createdAt"`
}
