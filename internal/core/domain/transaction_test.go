package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func validCredit() Transaction {
	return Transaction{
		ID:                 "t1",
		Type:               Credit,
		Kind:               KindContribution,
		TransactionGroup:   "g1",
		Amount:             10000,
		Currency:           "USD",
		HostCurrency:       "USD",
		HostCurrencyFxRate: decimal.NewFromInt(1),
		CollectiveID:       "collective",
		FromCollectiveID:   "contributor",
		OrderID:            strPtr("order"),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr string
	}{
		{name: "valid credit", mutate: func(*Transaction) {}},
		{name: "valid debit", mutate: func(tx *Transaction) { tx.Type = Debit; tx.Amount = -10000 }},
		{name: "missing group", mutate: func(tx *Transaction) { tx.TransactionGroup = "" }, wantErr: "group"},
		{name: "unknown kind", mutate: func(tx *Transaction) { tx.Kind = "GIFT" }, wantErr: "unknown transaction kind"},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = 0 }, wantErr: "zero"},
		{name: "negative credit", mutate: func(tx *Transaction) { tx.Amount = -1 }, wantErr: "credit amount"},
		{name: "positive debit", mutate: func(tx *Transaction) { tx.Type = Debit }, wantErr: "debit amount"},
		{name: "bad currency", mutate: func(tx *Transaction) { tx.Currency = "US" }, wantErr: "currency"},
		{name: "self transfer", mutate: func(tx *Transaction) { tx.FromCollectiveID = tx.CollectiveID }, wantErr: "differ"},
		{name: "contribution without order", mutate: func(tx *Transaction) { tx.OrderID = nil }, wantErr: "require an order"},
		{name: "expense without expense id", mutate: func(tx *Transaction) { tx.Kind = KindExpense }, wantErr: "require an expense"},
		{name: "debt flag on contribution", mutate: func(tx *Transaction) { tx.IsDebt = true }, wantErr: "isDebt"},
		{name: "tip debt without flag", mutate: func(tx *Transaction) { tx.Kind = KindPlatformTipDebt }, wantErr: "isDebt"},
		{name: "tip debt", mutate: func(tx *Transaction) { tx.Kind = KindPlatformTipDebt; tx.IsDebt = true }},
		{name: "refund without reference", mutate: func(tx *Transaction) { tx.IsRefund = true }, wantErr: "reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validCredit()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseTransactionKind(t *testing.T) {
	kind, err := ParseTransactionKind("PLATFORM_TIP_DEBT")
	assert.NoError(t, err)
	assert.True(t, kind.IsDebtKind())

	_, err = ParseTransactionKind("platform_tip")
	assert.Error(t, err)

	assert.False(t, KindPlatformTip.IsDebtKind())
	assert.Equal(t, Debit, Credit.Opposite())
}

func TestLedgerPayload_Flags(t *testing.T) {
	p := LedgerPayload{Data: map[string]any{DataKeyIsFeesOnTop: true, DataKeyTipCollectedByHost: "yes"}}
	assert.True(t, p.IsFeesOnTop())
	assert.False(t, p.IsTipCollectedByHost())
	assert.False(t, LedgerPayload{}.IsFeesOnTop())
}
