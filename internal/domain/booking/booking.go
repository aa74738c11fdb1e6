package booking

import (
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/domain/schedule"
)

// Flow identifies which storefront wizard produced a purchase.
type Flow string

const (
	FlowVenue    Flow = "venue"
	FlowCatering Flow = "catering"
	FlowDessert  Flow = "dessert"
)

// Status represents the booking status in the state machine.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PlanStatus is the lifecycle state of a persisted payment-plan snapshot.
type PlanStatus string

const (
	PlanStatusActive  PlanStatus = "active"
	PlanStatusSettled PlanStatus = "settled"
)

// Booking represents one couple's wedding booking across all flows.
type Booking struct {
	ID                  uuid.UUID
	SessionID           string
	CoupleName          string
	Email               string
	WeddingDate         *time.Time
	VenueBooked         bool
	CateringBooked      bool
	DessertBooked       bool
	GuestCount          int
	GuestCountLocked    bool
	GuestLockReasons    []guestcount.LockReason
	ProcessorCustomerID *string
	AgreementURL        *string
	TotalSpentCents     int64
	Status              Status
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewBooking creates a draft booking for a session.
func NewBooking(sessionID, coupleName, email string) (*Booking, error) {
	if sessionID == "" {
		return nil, domainErrors.NewValidationError("session_id", "cannot be empty")
	}
	now := time.Now()
	return &Booking{
		ID:         uuid.New(),
		SessionID:  sessionID,
		CoupleName: coupleName,
		Email:      email,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanTransitionTo checks if the booking can transition to the given status
func (b *Booking) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusDraft: {
			StatusConfirmed,
			StatusCancelled,
		},
		StatusConfirmed: {
			StatusCompleted,
			StatusCancelled,
		},
		StatusCompleted: {}, // Terminal state
		StatusCancelled: {}, // Terminal state
	}

	allowed, exists := transitions[b.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the booking to a new status
func (b *Booking) TransitionTo(newStatus Status) error {
	if !b.CanTransitionTo(newStatus) {
		return domainErrors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(b.Status)+" to "+string(newStatus),
			domainErrors.ErrInvalidStateTransition,
		)
	}
	b.Status = newStatus
	b.UpdatedAt = time.Now()
	return nil
}

// MarkFlowBooked flags one storefront flow as booked.
func (b *Booking) MarkFlowBooked(flow Flow) {
	switch flow {
	case FlowVenue:
		b.VenueBooked = true
	case FlowCatering:
		b.CateringBooked = true
	case FlowDessert:
		b.DessertBooked = true
	}
	b.UpdatedAt = time.Now()
}

// Purchase is one purchase-history entry, appended per finalized checkout.
type Purchase struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Flow        Flow
	Description string
	AmountCents int64
	CreatedAt   time.Time
}

// PlanSnapshot is the immutable payment-plan record written at finalize.
// The field set is a wire contract: the autopay biller and the dashboards
// read exactly this shape.
type PlanSnapshot struct {
	BookingID        uuid.UUID          `json:"booking_id"`
	Status           PlanStatus         `json:"status"`
	Strategy         schedule.Strategy  `json:"strategy"`
	TotalCents       int64              `json:"totalCents"`
	DepositCents     int64              `json:"depositCents"`
	RemainingCents   int64              `json:"remainingCents"`
	PlanMonths       int                `json:"planMonths"`
	PerMonthCents    int64              `json:"perMonthCents"`
	LastPaymentCents int64              `json:"lastPaymentCents"`
	NextChargeAt     *time.Time         `json:"nextChargeAt"`
	FinalDueAt       *time.Time         `json:"finalDueAt"`
}

// SnapshotPlan freezes a computed plan into its persisted snapshot form.
func SnapshotPlan(bookingID uuid.UUID, plan *schedule.Plan) PlanSnapshot {
	status := PlanStatusSettled
	if plan.HasInstallments() {
		status = PlanStatusActive
	}
	return PlanSnapshot{
		BookingID:        bookingID,
		Status:           status,
		Strategy:         plan.Strategy,
		TotalCents:       plan.TotalCents,
		DepositCents:     plan.DepositCents,
		RemainingCents:   plan.RemainingCents,
		PlanMonths:       plan.PlanMonths,
		PerMonthCents:    plan.PerMonthCents,
		LastPaymentCents: plan.LastPaymentCents,
		NextChargeAt:     plan.NextChargeAt,
		FinalDueAt:       plan.FinalDueAt,
	}
}

// InstallmentStatus represents an installment's charging state.
type InstallmentStatus string

const (
	InstallmentScheduled InstallmentStatus = "scheduled"
	InstallmentCharging  InstallmentStatus = "charging"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentFailed    InstallmentStatus = "failed"
)

// Installment is one scheduled automatic monthly charge derived from a plan
// snapshot. The final installment carries the tail payment.
type Installment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Sequence    int
	AmountCents int64
	DueAt       time.Time
	Status      InstallmentStatus
	Attempts    int
	MaxAttempts int
	LastError   *string
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BuildInstallments expands a plan snapshot into its monthly charge rows.
// Due dates advance one calendar month per installment from the first charge
// anchor; the last row absorbs the cent remainder.
func BuildInstallments(snap PlanSnapshot) []*Installment {
	if snap.PlanMonths == 0 || snap.NextChargeAt == nil {
		return nil
	}

	now := time.Now()
	out := make([]*Installment, 0, snap.PlanMonths)
	for i := 0; i < snap.PlanMonths; i++ {
		amount := snap.PerMonthCents
		if i == snap.PlanMonths-1 {
			amount = snap.LastPaymentCents
		}
		due := snap.NextChargeAt.AddDate(0, i, 0)
		out = append(out, &Installment{
			ID:          uuid.New(),
			BookingID:   snap.BookingID,
			Sequence:    i + 1,
			AmountCents: amount,
			DueAt:       due,
			Status:      InstallmentScheduled,
			MaxAttempts: 3,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out
}

// MarkCharging transitions a scheduled or retryable installment to charging.
func (i *Installment) MarkCharging() error {
	if i.Status != InstallmentScheduled && i.Status != InstallmentFailed {
		return domainErrors.ErrInvalidStateTransition
	}
	if i.Status == InstallmentFailed && i.Attempts >= i.MaxAttempts {
		return domainErrors.ErrMaxRetriesExceeded
	}
	i.Status = InstallmentCharging
	i.Attempts++
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPaid records a successful charge.
func (i *Installment) MarkPaid() error {
	if i.Status != InstallmentCharging {
		return domainErrors.ErrInvalidStateTransition
	}
	now := time.Now()
	i.Status = InstallmentPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	return nil
}

// MarkFailed records a failed charge attempt.
func (i *Installment) MarkFailed(errMsg string) error {
	if i.Status != InstallmentCharging {
		return domainErrors.ErrInvalidStateTransition
	}
	i.Status = InstallmentFailed
	i.LastError = &errMsg
	i.UpdatedAt = time.Now()
	return nil
}

// CanRetry reports whether a failed installment has attempts left.
func (i *Installment) CanRetry() bool {
	return i.Status == InstallmentFailed && i.Attempts < i.MaxAttempts
}
