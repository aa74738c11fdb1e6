package checkout

import (
	"context"

	"github.com/oakhollow/banquet/internal/domain/booking"
)

// TransactionManager defines the interface for transaction management.
// This is an application-layer port, not a domain concern.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentMethods is the processor-side collaborator that guarantees a
// default payment method is on file for future automatic charges.
type PaymentMethods interface {
	EnsureDefaultPaymentMethod(ctx context.Context, customerID string) error
}

// AgreementFacts carries what the document generator needs to render the
// signed agreement and receipt.
type AgreementFacts struct {
	BookingID      string
	CoupleName     string
	Flow           booking.Flow
	Description    string
	GuestCount     int
	AmountCents    int64
	TotalCents     int64
	RemainingCents int64
	PlanMonths     int
}

// DocumentService renders and uploads the agreement PDF, returning a
// retrievable URL. Best-effort from the finalizer's point of view.
type DocumentService interface {
	GenerateAgreement(ctx context.Context, facts AgreementFacts) (string, error)
}

// Notifier broadcasts booking change events to on-screen widgets and
// downstream consumers. Fire-and-forget.
type Notifier interface {
	BookingChanged(ctx context.Context, bookingID string, data map[string]any) error
}

// FlowStepper advances a flow's wizard step, e.g. onto the thank-you screen.
type FlowStepper interface {
	AdvanceToThankYou(ctx context.Context, sessionID string, flow booking.Flow) error
}
