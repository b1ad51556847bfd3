package domain

import "time"

// OrderStatus is the lifecycle state of a contribution agreement.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusError     OrderStatus = "ERROR"
	OrderStatusExpired   OrderStatus = "EXPIRED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// AcceptsPayment reports whether a payment attempt may be made for an order in this status.
func (s OrderStatus) AcceptsPayment() bool {
	switch s {
	case OrderStatusNew, OrderStatusPending, OrderStatusError, OrderStatusActive:
		return true
	default:
		return false
	}
}

// OrderData is the free-form data column of an order. Only the lock bookkeeping is typed.
type OrderData struct {
	LockedAt  *time.Time  `json:"lockedAt,omitempty"`
	Deadlocks []time.Time `json:"deadlocks,omitempty"`
}

// Order is a one-off or recurring contribution agreement.
type Order struct {
	ID                string      `json:"id"`
	Status            OrderStatus `json:"status"`
	TotalAmount       int64       `json:"totalAmount"`
	PlatformTipAmount int64       `json:"platformTipAmount"`
	Currency          string      `json:"currency"`
	Description       string      `json:"description"`
	FromCollectiveID  string      `json:"fromCollectiveId"`
	CollectiveID      string      `json:"collectiveId"`
	SubscriptionID    *string     `json:"subscriptionId,omitempty"`
	Data              OrderData   `json:"data"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// IsLocked reports whether the order holds a lock that is not yet stale at now.
func (o Order) IsLocked(now time.Time, staleAfter time.Duration) bool {
	if o.Data.LockedAt == nil {
		return false
	}
	return o.Data.LockedAt.After(now.Add(-staleAfter))
}
