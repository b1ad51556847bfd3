package accounting

import (
	"fmt"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConvertAmount converts minor units with rate, rounding half away from zero.
func ConvertAmount(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

// ConvertToTransactionCurrency converts a host currency amount back into the
// transaction currency, given the rate from transaction to host currency.
func ConvertToTransactionCurrency(amountInHostCurrency int64, hostCurrencyFxRate decimal.Decimal) int64 {
	if hostCurrencyFxRate.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amountInHostCurrency).Div(hostCurrencyFxRate).Round(0).IntPart()
}

// NetAmount computes what the receiving collective keeps of amount after fees.
// Host, processor and platform fees are in host currency; tax is in the transaction currency.
func NetAmount(amount int64, fees domain.FeeBreakdown, hostCurrencyFxRate decimal.Decimal) int64 {
	hostCurrencyFees := fees.HostFee + fees.PaymentProcessorFee + fees.PlatformFee
	return amount - ConvertToTransactionCurrency(hostCurrencyFees, hostCurrencyFxRate) - fees.Tax
}

type pairKey struct {
	kind     domain.TransactionKind
	currency string
	amount   int64
	isDebt   bool
	isRefund bool
}

// ValidateGroupBalance checks that the rows of one transaction group sum to zero in
// every currency and that every CREDIT row has exactly one matching DEBIT row.
func ValidateGroupBalance(transactions []domain.Transaction) error {
	if len(transactions) < 2 {
		return fmt.Errorf("transaction group must have at least two rows")
	}

	group := transactions[0].TransactionGroup
	sums := make(map[string]int64)
	unmatched := make(map[pairKey]int)

	for _, txn := range transactions {
		if txn.TransactionGroup != group {
			return fmt.Errorf("transaction %s belongs to group %s, expected %s", txn.ID, txn.TransactionGroup, group)
		}
		sums[txn.Currency] += txn.Amount

		abs := txn.Amount
		if abs < 0 {
			abs = -abs
		}
		key := pairKey{kind: txn.Kind, currency: txn.Currency, amount: abs, isDebt: txn.IsDebt, isRefund: txn.IsRefund}
		if txn.Type == domain.Credit {
			unmatched[key]++
		} else {
			unmatched[key]--
		}
	}

	for currency, sum := range sums {
		if sum != 0 {
			return fmt.Errorf("transaction group %s does not balance in %s: sum is %d", group, currency, sum)
		}
	}
	for key, n := range unmatched {
		if n != 0 {
			return fmt.Errorf("transaction group %s has %d unpaired %s rows of %d %s", group, n, key.kind, key.amount, key.currency)
		}
	}
	return nil
}
