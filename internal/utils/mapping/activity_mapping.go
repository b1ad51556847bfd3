package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
)

// ToModelActivity converts a domain Activity to a model Activity
func ToModelActivity(d domain.Activity) models.Activity {
	return models.Activity{
		ActivityID:       d.ID,
		Type:             string(d.Type),
		CollectiveID:     d.CollectiveID,
		HostCollectiveID: d.HostCollectiveID,
		ExpenseID:        d.ExpenseID,
		TransactionID:    d.TransactionID,
		Data:             d.Data,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
	}
}

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:        d.ID,
		Type:             string(d.Type),
		Status:           string(d.Status),
		CollectiveID:     d.CollectiveID,
		FromCollectiveID: d.FromCollectiveID,
		Amount:           d.Amount,
		Currency:         d.Currency,
		Description:      d.Description,
		Data:             d.Data,
		CreatedAt:        d.CreatedAt,
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ID:               m.ExpenseID,
		Type:             domain.ExpenseType(m.Type),
		Status:           domain.ExpenseStatus(m.Status),
		CollectiveID:     m.CollectiveID,
		FromCollectiveID: m.FromCollectiveID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Description:      m.Description,
		Data:             m.Data,
		CreatedAt:        m.CreatedAt,
	}
}
