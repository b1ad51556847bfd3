package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
)

// ToDomainOrder converts a model Order to a domain Order
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		ID:                m.OrderID,
		Status:            domain.OrderStatus(m.Status),
		TotalAmount:       m.TotalAmount,
		PlatformTipAmount: m.PlatformTipAmount,
		Currency:          m.Currency,
		Description:       m.Description,
		FromCollectiveID:  m.FromCollectiveID,
		CollectiveID:      m.CollectiveID,
		SubscriptionID:    m.SubscriptionID,
		Data: domain.OrderData{
			LockedAt:  m.Data.LockedAt,
			Deadlocks: m.Data.Deadlocks,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToDomainCollective converts a model Collective to a domain Collective
func ToDomainCollective(m models.Collective) domain.Collective {
	return domain.Collective{
		ID:                 m.CollectiveID,
		Type:               domain.CollectiveType(m.Type),
		Name:               m.Name,
		Currency:           m.Currency,
		ParentCollectiveID: m.ParentCollectiveID,
		HostCollectiveID:   m.HostCollectiveID,
	}
}
