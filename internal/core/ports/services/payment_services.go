package services

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/dto"
)

// ChargeRequest is what a payment provider is asked to collect.
type ChargeRequest struct {
	OrderID       string
	Amount        int64
	Currency      string
	PaymentMethod map[string]any
}

// ChargeResult is the outcome of a successful charge. ProcessorFee is in the charge
// currency and overrides the fee of the request when positive.
type ChargeResult struct {
	Reference    string
	ProcessorFee int64
	Data         map[string]any
}

// PaymentProvider is an adapter to a money-in rail. Failures are returned as
// *apperrors.ProviderError so continuation payloads reach the client.
type PaymentProvider interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// PaymentSvc processes order payments under the order lock.
type PaymentSvc interface {
	ProcessOrderPayment(ctx context.Context, orderID string, req dto.ProcessOrderPaymentRequest, actorID string) (*dto.ProcessOrderPaymentResponse, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
