package models

import "time"

// OrderData is the jsonb bag of an order. Only the lock bookkeeping is modelled.
type OrderData struct {
	LockedAt  *time.Time  `json:"lockedAt,omitempty"`
	Deadlocks []time.Time `json:"deadlocks,omitempty"`
}

// Order is a row of the orders table.
type Order struct {
	OrderID           string    `json:"orderID"`
	Status            string    `json:"status"`
	TotalAmount       int64     `json:"totalAmount"`
	PlatformTipAmount int64     `json:"platformTipAmount"`
	Currency          string    `json:"currency"`
	Description       string    `json:"description"`
	FromCollectiveID  string    `json:"fromCollectiveID"`
	CollectiveID      string    `json:"collectiveID"`
	SubscriptionID    *string   `json:"subscriptionID"`
	Data              OrderData `json:"data"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
