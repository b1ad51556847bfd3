package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Amounts are minor units.
type Transaction struct {
	TransactionID                     string          `json:"transactionID"`
	TransactionGroup                  string          `json:"transactionGroup"`
	Type                              string          `json:"type"` // DEBIT or CREDIT
	Kind                              string          `json:"kind"`
	Description                       string          `json:"description"`
	Amount                            int64           `json:"amount"`
	Currency                          string          `json:"currency"`
	HostCurrency                      string          `json:"hostCurrency"`
	HostCurrencyFxRate                decimal.Decimal `json:"hostCurrencyFxRate"`
	AmountInHostCurrency              int64           `json:"amountInHostCurrency"`
	NetAmountInCollectiveCurrency     int64           `json:"netAmountInCollectiveCurrency"`
	PlatformFeeInHostCurrency         int64           `json:"platformFeeInHostCurrency"`
	HostFeeInHostCurrency             int64           `json:"hostFeeInHostCurrency"`
	PaymentProcessorFeeInHostCurrency int64           `json:"paymentProcessorFeeInHostCurrency"`
	TaxAmount                         int64           `json:"taxAmount"`
	CollectiveID                      string          `json:"collectiveID"`
	FromCollectiveID                  string          `json:"fromCollectiveID"`
	HostCollectiveID                  *string         `json:"hostCollectiveID"` // Nullable for platform level rows
	OrderID                           *string         `json:"orderID"`
	ExpenseID                         *string         `json:"expenseID"`
	IsDebt                            bool            `json:"isDebt"`
	IsRefund                          bool            `json:"isRefund"`
	RefundTransactionID               *string         `json:"refundTransactionID"`
	Data                              map[string]any  `json:"data"` // jsonb
	CreatedAt                         time.Time       `json:"createdAt"`
	CreatedBy                         string          `json:"createdBy"`
}
