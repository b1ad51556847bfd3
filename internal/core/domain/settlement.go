package domain

import (
	"fmt"
	"time"
)

// SettlementStatus is the reconciliation state of a debt.
type SettlementStatus string

const (
	SettlementOwed     SettlementStatus = "OWED"
	SettlementInvoiced SettlementStatus = "INVOICED"
	SettlementSettled  SettlementStatus = "SETTLED"
)

var settlementRank = map[SettlementStatus]int{
	SettlementOwed:     0,
	SettlementInvoiced: 1,
	SettlementSettled:  2,
}

// ParseSettlementStatus converts input into a known status.
func ParseSettlementStatus(s string) (SettlementStatus, error) {
	status := SettlementStatus(s)
	if _, ok := settlementRank[status]; !ok {
		return "", fmt.Errorf("unknown settlement status %q", s)
	}
	return status, nil
}

// TransactionSettlement tracks the reconciliation of one debt, keyed by the debt's CREDIT row.
type TransactionSettlement struct {
	TransactionID       string           `json:"transactionId"`
	TransactionGroup    string           `json:"transactionGroup"`
	HostCollectiveID    string           `json:"hostCollectiveId"`
	Kind                TransactionKind  `json:"kind"`
	Status              SettlementStatus `json:"status"`
	SettlementExpenseID *string          `json:"settlementExpenseId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// Transition moves the settlement to next. It reports whether anything changed.
// Re-applying the current status is a no-op; going backwards is rejected, and so
// is settling without an expense.
func (s *TransactionSettlement) Transition(next SettlementStatus, expenseID *string, at time.Time) (bool, error) {
	nextRank, ok := settlementRank[next]
	if !ok {
		return false, fmt.Errorf("unknown settlement status %q", next)
	}
	if next == SettlementSettled && expenseID == nil && s.SettlementExpenseID == nil {
		return false, fmt.Errorf("a settlement expense is required to mark transaction %s as %s", s.TransactionID, next)
	}
	if next == s.Status {
		return false, nil
	}
	if nextRank < settlementRank[s.Status] {
		return false, fmt.Errorf("cannot move settlement of transaction %s from %s to %s", s.TransactionID, s.Status, next)
	}
	s.Status = next
	if expenseID != nil {
		s.SettlementExpenseID = expenseID
	}
	s.UpdatedAt = at
	return true, nil
}

// HostDebt is a debt transaction joined with its settlement state.
type HostDebt struct {
	Transaction
	Settlement TransactionSettlement `json:"settlement"`
}
