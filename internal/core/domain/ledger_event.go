package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeBreakdown lists the fees withheld from a movement. Host, processor and platform
// fees are in host currency; Tax is in the transaction currency.
type FeeBreakdown struct {
	HostFee             int64 `json:"hostFee" validate:"gte=0"`
	PaymentProcessorFee int64 `json:"paymentProcessorFee" validate:"gte=0"`
	PlatformFee         int64 `json:"platformFee" validate:"gte=0"`
	Tax                 int64 `json:"tax" validate:"gte=0"`
}

// LedgerEvent describes one movement of money between two accounts. Amount is
// credited to CollectiveID and debited from FromCollectiveID; a negative amount
// moves money the other way.
type LedgerEvent struct {
	Kind               TransactionKind `validate:"required"`
	Description        string          `validate:"max=500"`
	CollectiveID       string          `validate:"required"`
	FromCollectiveID   string          `validate:"required,nefield=CollectiveID"`
	HostCollectiveID   *string
	Amount             int64  `validate:"ne=0"`
	Currency           string `validate:"required,len=3,uppercase"`
	HostCurrency       string `validate:"required,len=3,uppercase"`
	HostCurrencyFxRate decimal.Decimal
	Fees               FeeBreakdown
	OrderID            *string
	ExpenseID          *string
	IsDebt             bool
	// TransactionGroup is generated when empty.
	TransactionGroup string
	Data             map[string]any
	CreatedAt        time.Time
	CreatedBy        string `validate:"required"`
}

// LedgerPayload is a provider-normalized description of a charge, possibly carrying
// a platform tip. It is expanded into one or more LedgerEvents.
type LedgerPayload struct {
	Kind             TransactionKind `json:"kind" validate:"required"`
	Description      string          `json:"description" validate:"max=500"`
	CollectiveID     string          `json:"collectiveId" validate:"required"`
	FromCollectiveID string          `json:"fromCollectiveId" validate:"required,nefield=CollectiveID"`
	HostCollectiveID *string         `json:"hostCollectiveId,omitempty"`
	OrderID          *string         `json:"orderId,omitempty"`
	ExpenseID        *string         `json:"expenseId,omitempty"`

	// Amount is the total charged to the contributor, tip included.
	Amount             int64           `json:"amount" validate:"gt=0"`
	Currency           string          `json:"currency" validate:"required,len=3,uppercase"`
	HostCurrency       string          `json:"hostCurrency" validate:"required,len=3,uppercase"`
	HostCurrencyFxRate decimal.Decimal `json:"hostCurrencyFxRate"`
	Fees               FeeBreakdown    `json:"fees"`

	// PlatformTipAmount is in Currency and only used when Data[isFeesOnTop] is set.
	PlatformTipAmount int64 `json:"platformTipAmount" validate:"gte=0,ltfield=Amount"`

	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	CreatedBy string         `json:"createdBy" validate:"required"`
}

// IsFeesOnTop reports whether the tip is collected on top of the contribution.
func (p LedgerPayload) IsFeesOnTop() bool {
	return dataFlag(p.Data, DataKeyIsFeesOnTop)
}

// IsTipCollectedByHost reports whether the host, not the platform, received the tip money.
func (p LedgerPayload) IsTipCollectedByHost() bool {
	return dataFlag(p.Data, DataKeyTipCollectedByHost)
}

func dataFlag(data map[string]any, key string) bool {
	v, ok := data[key].(bool)
	return ok && v
}
