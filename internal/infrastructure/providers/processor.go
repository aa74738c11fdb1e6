package providers

import (
	"context"
)

// ChargeResult is the processor's answer to a charge attempt.
type ChargeResult struct {
	TransactionID string
	Status        string // "success", "failed"
	ErrorMessage  string
}

// ChargeRequest is one off-session charge against a stored payment method.
type ChargeRequest struct {
	CustomerID  string
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]any
}

// Processor is the payment-processor boundary. The storefront widget
// collects card details itself; the core only ever sees opaque customer
// ids and charge outcomes.
type Processor interface {
	// Name returns the processor name.
	Name() string
	// EnsureDefaultPaymentMethod guarantees the customer has a default
	// payment method on file for future automatic charges.
	EnsureDefaultPaymentMethod(ctx context.Context, customerID string) error
	// Charge performs an off-session charge.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
