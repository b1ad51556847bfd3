package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger row is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the other side of a pair.
func (t TransactionType) Opposite() TransactionType {
	if t == Credit {
		return Debit
	}
	return Credit
}

// TransactionKind is the closed set of economic event kinds a ledger row can describe.
type TransactionKind string

const (
	KindContribution    TransactionKind = "CONTRIBUTION"
	KindAddedFunds      TransactionKind = "ADDED_FUNDS"
	KindExpense         TransactionKind = "EXPENSE"
	KindPlatformTip     TransactionKind = "PLATFORM_TIP"
	KindPlatformTipDebt TransactionKind = "PLATFORM_TIP_DEBT"
	KindHostFee         TransactionKind = "HOST_FEE"
	KindBalanceTransfer TransactionKind = "BALANCE_TRANSFER"
)

// kindRules are the invariants a row of a given kind must satisfy.
type kindRules struct {
	requiresOrder   bool
	requiresExpense bool
	debt            bool // rows of this kind are always debts, and only they are
}

var transactionKinds = map[TransactionKind]kindRules{
	KindContribution:    {requiresOrder: true},
	KindAddedFunds:      {requiresOrder: true},
	KindExpense:         {requiresExpense: true},
	KindPlatformTip:     {requiresOrder: true},
	KindPlatformTipDebt: {requiresOrder: true, debt: true},
	KindHostFee:         {},
	KindBalanceTransfer: {},
}

// ParseTransactionKind converts free-form input into a known kind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(s)
	if _, ok := transactionKinds[k]; !ok {
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
	return k, nil
}

// IsDebtKind reports whether rows of this kind record an obligation rather than money movement.
func (k TransactionKind) IsDebtKind() bool {
	return transactionKinds[k].debt
}

// Keys used in Transaction.Data.
const (
	DataKeyIsFeesOnTop        = "isFeesOnTop"
	DataKeyPlatformTipFxRate  = "platformTipFxRate"
	DataKeyHostFeePercent     = "hostFeePercent"
	DataKeyProviderReference  = "paymentProviderReference"
	DataKeyRefundedGroup      = "refundedTransactionGroup"
	DataKeySettlementCurrency = "settlementCurrency"
	DataKeyTipCollectedByHost = "isPlatformTipDirectlyCollected"
)

// Transaction is one side of a money movement. Rows sharing a TransactionGroup
// describe a single economic event and sum to zero.
type Transaction struct {
	ID               string          `json:"id"`
	Type             TransactionType `json:"type"`
	Kind             TransactionKind `json:"kind"`
	TransactionGroup string          `json:"transactionGroup"`
	Description      string          `json:"description"`

	// Amounts are in minor units. CREDIT rows are positive, DEBIT rows negative.
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

	CollectiveID     string  `json:"collectiveId"`
	FromCollectiveID string  `json:"fromCollectiveId"`
	HostCollectiveID *string `json:"hostCollectiveId,omitempty"`
	OrderID          *string `json:"orderId,omitempty"`
	ExpenseID        *string `json:"expenseId,omitempty"`

	IsDebt              bool    `json:"isDebt"`
	IsRefund            bool    `json:"isRefund"`
	RefundTransactionID *string `json:"refundTransactionId,omitempty"`

	Data map[string]any `json:"data,omitempty"`

	// SettlementStatus is only populated for debt rows read together with their settlement.
	SettlementStatus *SettlementStatus `json:"settlementStatus,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// Validate checks the invariants of a single row, including the kind-specific ones.
func (t Transaction) Validate() error {
	if t.TransactionGroup == "" {
		return fmt.Errorf("transaction group is required")
	}
	if t.Type != Credit && t.Type != Debit {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	rules, ok := transactionKinds[t.Kind]
	if !ok {
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	if len(t.Currency) != 3 {
		return fmt.Errorf("currency must be a 3 letter code")
	}
	if t.Amount == 0 {
		return fmt.Errorf("amount must not be zero")
	}
	if t.Type == Credit && t.Amount < 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	if t.Type == Debit && t.Amount > 0 {
		return fmt.Errorf("debit amount must be negative")
	}
	if t.CollectiveID == "" || t.FromCollectiveID == "" {
		return fmt.Errorf("collective and from collective are required")
	}
	if t.CollectiveID == t.FromCollectiveID {
		return fmt.Errorf("collective and from collective must differ")
	}
	if rules.requiresOrder && t.OrderID == nil {
		return fmt.Errorf("%s transactions require an order", t.Kind)
	}
	if rules.requiresExpense && t.ExpenseID == nil {
		return fmt.Errorf("%s transactions require an expense", t.Kind)
	}
	if rules.debt != t.IsDebt {
		return fmt.Errorf("isDebt must be %t for %s transactions", rules.debt, t.Kind)
	}
	if t.IsRefund && t.RefundTransactionID == nil {
		return fmt.Errorf("refund transactions must reference the refunded transaction")
	}
	return nil
}

// IsPlatformLevel reports whether the row is not attached to any host.
func (t Transaction) IsPlatformLevel() bool {
	return t.HostCollectiveID == nil
}
