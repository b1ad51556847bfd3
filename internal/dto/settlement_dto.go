package dto

// UpdateSettlementStatusRequest moves debts to a new settlement status.
type UpdateSettlementStatusRequest struct {
	TransactionIDs      []string `json:"transactionIds" binding:"required,min=1,dive,required"`
	Status              string   `json:"status" binding:"required,oneof=OWED INVOICED SETTLED"`
	SettlementExpenseID *string  `json:"settlementExpenseId,omitempty"`
}

// UpdateSettlementStatusResponse reports how many debts actually changed.
type UpdateSettlementStatusResponse struct {
	Updated int `json:"updated"`
}

// OwedHostsResponse lists hosts with at least one OWED debt.
type OwedHostsResponse struct {
	HostIDs []string `json:"hostIds"`
}
