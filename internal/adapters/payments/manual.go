package payments

import (
	"context"
	"strings"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
)

// ManualProviderName is the provider name clients send for host-confirmed bank transfers.
const ManualProviderName = "bank_transfer"

// paymentMethodReferenceKey is the key of the bank transfer reference in the payment method.
const paymentMethodReferenceKey = "reference"

// ManualProvider records payments the host received outside the platform, typically by bank
// transfer. No money moves through a processor, so there is no processor fee, and any
// platform tip sits with the host until it is settled.
type ManualProvider struct {
	instructions map[string]any
}

// ManualOption configures a ManualProvider.
type ManualOption func(*ManualProvider)

// WithTransferInstructions sets the account details returned when a transfer reference is missing.
func WithTransferInstructions(instructions map[string]any) ManualOption {
	return func(p *ManualProvider) {
		p.instructions = instructions
	}
}

// NewManualProvider creates the bank transfer provider.
func NewManualProvider(opts ...ManualOption) *ManualProvider {
	p := &ManualProvider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ portssvc.PaymentProvider = (*ManualProvider)(nil)

func (p *ManualProvider) Name() string { return ManualProviderName }

// Charge accepts the transfer once the host supplies its reference. Without one it fails with
// the transfer instructions as continuation payload so the client can show them to the payer.
func (p *ManualProvider) Charge(ctx context.Context, req portssvc.ChargeRequest) (*portssvc.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reference, _ := req.PaymentMethod[paymentMethodReferenceKey].(string)
	reference = strings.TrimSpace(reference)
	if reference == "" {
		payload := map[string]any{
			"type":     "bank_transfer_instructions",
			"orderId":  req.OrderID,
			"amount":   req.Amount,
			"currency": req.Currency,
		}
		for k, v := range p.instructions {
			payload[k] = v
		}
		return nil, &apperrors.ProviderError{
			Provider: ManualProviderName,
			Message:  "a bank transfer reference is required",
			Payload:  payload,
		}
	}

	return &portssvc.ChargeResult{
		Reference: reference,
		Data: map[string]any{
			domain.DataKeyTipCollectedByHost: true,
			"paymentMethodType":              ManualProviderName,
		},
	}, nil
}
