package dto

import "github.com/SscSPs/host_ledger/internal/core/domain"

// ListTransactionsParams holds token pagination parameters.
type ListTransactionsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of ledger rows.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextToken    *string              `json:"nextToken,omitempty"`
}

// TransactionGroupResponse holds every row of one economic event.
type TransactionGroupResponse struct {
	TransactionGroup string               `json:"transactionGroup"`
	Transactions     []domain.Transaction `json:"transactions"`
}

// NewTransactionGroupResponse builds the response for a group.
func NewTransactionGroupResponse(group string, txns []domain.Transaction) TransactionGroupResponse {
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return TransactionGroupResponse{TransactionGroup: group, Transactions: txns}
}
