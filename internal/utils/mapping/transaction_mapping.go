package mapping

import (
	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:                     d.ID,
		TransactionGroup:                  d.TransactionGroup,
		Type:                              string(d.Type),
		Kind:                              string(d.Kind),
		Description:                       d.Description,
		Amount:                            d.Amount,
		Currency:                          d.Currency,
		HostCurrency:                      d.HostCurrency,
		HostCurrencyFxRate:                d.HostCurrencyFxRate,
		AmountInHostCurrency:              d.AmountInHostCurrency,
		NetAmountInCollectiveCurrency:     d.NetAmountInCollectiveCurrency,
		PlatformFeeInHostCurrency:         d.PlatformFeeInHostCurrency,
		HostFeeInHostCurrency:             d.HostFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: d.PaymentProcessorFeeInHostCurrency,
		TaxAmount:                         d.TaxAmount,
		CollectiveID:                      d.CollectiveID,
		FromCollectiveID:                  d.FromCollectiveID,
		HostCollectiveID:                  d.HostCollectiveID,
		OrderID:                           d.OrderID,
		ExpenseID:                         d.ExpenseID,
		IsDebt:                            d.IsDebt,
		IsRefund:                          d.IsRefund,
		RefundTransactionID:               d.RefundTransactionID,
		Data:                              d.Data,
		CreatedAt:                         d.CreatedAt,
		CreatedBy:                         d.CreatedBy,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                                m.TransactionID,
		TransactionGroup:                  m.TransactionGroup,
		Type:                              domain.TransactionType(m.Type),
		Kind:                              domain.TransactionKind(m.Kind),
		Description:                       m.Description,
		Amount:                            m.Amount,
		Currency:                          m.Currency,
		HostCurrency:                      m.HostCurrency,
		HostCurrencyFxRate:                m.HostCurrencyFxRate,
		AmountInHostCurrency:              m.AmountInHostCurrency,
		NetAmountInCollectiveCurrency:     m.NetAmountInCollectiveCurrency,
		PlatformFeeInHostCurrency:         m.PlatformFeeInHostCurrency,
		HostFeeInHostCurrency:             m.HostFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: m.PaymentProcessorFeeInHostCurrency,
		TaxAmount:                         m.TaxAmount,
		CollectiveID:                      m.CollectiveID,
		FromCollectiveID:                  m.FromCollectiveID,
		HostCollectiveID:                  m.HostCollectiveID,
		OrderID:                           m.OrderID,
		ExpenseID:                         m.ExpenseID,
		IsDebt:                            m.IsDebt,
		IsRefund:                          m.IsRefund,
		RefundTransactionID:               m.RefundTransactionID,
		Data:                              m.Data,
		CreatedAt:                         m.CreatedAt,
		CreatedBy:                         m.CreatedBy,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	if ms == nil {
		return nil
	}
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
