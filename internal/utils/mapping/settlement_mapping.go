package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
)

// ToModelSettlement converts a domain TransactionSettlement to a model TransactionSettlement
func ToModelSettlement(d domain.TransactionSettlement) models.TransactionSettlement {
	return models.TransactionSettlement{
		TransactionID:       d.TransactionID,
		TransactionGroup:    d.TransactionGroup,
		HostCollectiveID:    d.HostCollectiveID,
		Kind:                string(d.Kind),
		Status:              string(d.Status),
		SettlementExpenseID: d.SettlementExpenseID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// ToDomainSettlement converts a model TransactionSettlement to a domain TransactionSettlement
func ToDomainSettlement(m models.TransactionSettlement) domain.TransactionSettlement {
	return domain.TransactionSettlement{
		TransactionID:       m.TransactionID,
		TransactionGroup:    m.TransactionGroup,
		HostCollectiveID:    m.HostCollectiveID,
		Kind:                domain.TransactionKind(m.Kind),
		Status:              domain.SettlementStatus(m.Status),
		SettlementExpenseID: m.SettlementExpenseID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ToDomainHostDebt joins a debt row with its settlement.
func ToDomainHostDebt(t models.Transaction, s models.TransactionSettlement) domain.HostDebt {
	debt := domain.HostDebt{
		Transaction: ToDomainTransaction(t),
		Settlement:  ToDomainSettlement(s),
	}
	status := debt.Settlement.Status
	debt.SettlementStatus = &status
	return debt
}
