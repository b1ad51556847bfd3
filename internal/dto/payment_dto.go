package dto

// ProcessOrderPaymentRequest is the inbound "process order payment" command. Amount and
// currency come from the order; when given here they must match it.
type ProcessOrderPaymentRequest struct {
	Provider            string         `json:"provider" binding:"required"`
	Amount              *int64         `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Currency            string         `json:"currency,omitempty" binding:"omitempty,len=3,uppercase"`
	HostFee             int64          `json:"hostFee" binding:"gte=0"`
	PaymentProcessorFee int64          `json:"paymentProcessorFee" binding:"gte=0"`
	PlatformFee         int64          `json:"platformFee" binding:"gte=0"`
	Tax                 int64          `json:"tax" binding:"gte=0"`
	PlatformTipAmount   *int64         `json:"platformTipAmount,omitempty" binding:"omitempty,gte=0"`
	IsFeesOnTop         bool           `json:"isFeesOnTop"`
	PaymentMethod       map[string]any `json:"paymentMethod,omitempty"`
	Retries             int            `json:"retries" binding:"gte=0,lte=10"`
	RetryDelayMs        int            `json:"retryDelayMs" binding:"gte=0,lte=10000"`
}

// ProcessOrderPaymentResponse reports the ledger group created for the payment.
type ProcessOrderPaymentResponse struct {
	OrderID          string `json:"orderId"`
	Status           string `json:"status"`
	TransactionGroup string `json:"transactionGroup"`
	ProviderRef      string `json:"providerReference,omitempty"`
}

// ProviderErrorResponse carries a provider continuation payload untouched to the client.
type ProviderErrorResponse struct {
	Error    string         `json:"error"`
	Provider string         `json:"provider"`
	Payload  map[string]any `json:"payload,omitempty"`
}
