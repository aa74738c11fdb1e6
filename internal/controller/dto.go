package controller

import (
	"time"

	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/domain/money"
	"github.com/oakhollow/banquet/internal/domain/schedule"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 dollars for money, string
// IDs, validation tags). Controllers convert them to domain types before
// calling business logic.

// CreateBookingRequest holds the input for opening a booking session.
type CreateBookingRequest struct {
	SessionID   string  `json:"session_id" validate:"required"`
	CoupleName  string  `json:"couple_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	WeddingDate *string `json:"wedding_date,omitempty"`
}

// SetGuestCountRequest holds a guest-count write. Out-of-range counts are
// clamped by the store, not rejected.
type SetGuestCountRequest struct {
	Count int `json:"count"`
}

// LockGuestCountRequest commits a flow to its final headcount.
type LockGuestCountRequest struct {
	Count  int    `json:"count"`
	Reason string `json:"reason" validate:"required,oneof=venue catering dessert"`
}

// PlanPreviewRequest holds the input for computing a payment plan.
type PlanPreviewRequest struct {
	Total          float64  `json:"total" validate:"gte=0"`
	PayInFull      bool     `json:"pay_in_full"`
	DepositPercent *float64 `json:"deposit_percent,omitempty"`
	WeddingDate    *string  `json:"wedding_date,omitempty"`
}

// CheckoutRequest is the payment-success callback from the checkout widget.
type CheckoutRequest struct {
	BookingID      string   `json:"booking_id" validate:"required,uuid"`
	SessionID      string   `json:"session_id" validate:"required"`
	Flow           string   `json:"flow" validate:"required,oneof=venue catering dessert"`
	CustomerID     *string  `json:"customer_id,omitempty"`
	Description    string   `json:"description" validate:"required"`
	Total          float64  `json:"total" validate:"gte=0"`
	PayInFull      bool     `json:"pay_in_full"`
	DepositPercent *float64 `json:"deposit_percent,omitempty"`
	WeddingDate    *string  `json:"wedding_date,omitempty"`
}

// --- Response DTOs ---

// GuestCountResponse reports the shared guest-count state.
type GuestCountResponse struct {
	Value         int      `json:"value"`
	Locked        bool     `json:"locked"`
	LockedReasons []string `json:"locked_reasons"`
	Changed       *bool    `json:"changed,omitempty"`
}

// PlanResponse represents a computed payment plan in API responses.
type PlanResponse struct {
	Strategy     string     `json:"strategy"`
	Total        float64    `json:"total"`
	Deposit      float64    `json:"deposit"`
	Remaining    float64    `json:"remaining"`
	AmountDueNow float64    `json:"amount_due_now"`
	PlanMonths   int        `json:"plan_months"`
	PerMonth     float64    `json:"per_month"`
	LastPayment  float64    `json:"last_payment"`
	NextChargeAt *time.Time `json:"next_charge_at,omitempty"`
	FinalDueAt   *time.Time `json:"final_due_at,omitempty"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID               string     `json:"id"`
	SessionID        string     `json:"session_id"`
	CoupleName       string     `json:"couple_name"`
	Email            string     `json:"email"`
	WeddingDate      *time.Time `json:"wedding_date,omitempty"`
	VenueBooked      bool       `json:"venue_booked"`
	CateringBooked   bool       `json:"catering_booked"`
	DessertBooked    bool       `json:"dessert_booked"`
	GuestCount       int        `json:"guest_count"`
	GuestCountLocked bool       `json:"guest_count_locked"`
	GuestLockReasons []string   `json:"guest_lock_reasons"`
	AgreementURL     *string    `json:"agreement_url,omitempty"`
	TotalSpent       float64    `json:"total_spent"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CheckoutResponse reports what a finalize call did.
type CheckoutResponse struct {
	Replayed      bool             `json:"replayed"`
	Booking       *BookingResponse `json:"booking,omitempty"`
	AmountCharged float64          `json:"amount_charged"`
	AgreementURL  *string          `json:"agreement_url,omitempty"`
}

// PurchaseResponse is one purchase-history entry.
type PurchaseResponse struct {
	ID          string    `json:"id"`
	Flow        string    `json:"flow"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// InstallmentResponse is one scheduled automatic charge.
type InstallmentResponse struct {
	ID       string     `json:"id"`
	Sequence int        `json:"sequence"`
	Amount   float64    `json:"amount"`
	DueAt    time.Time  `json:"due_at"`
	Status   string     `json:"status"`
	Attempts int        `json:"attempts"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromGuestState converts guest-count state to API response.
func FromGuestState(s guestcount.State) *GuestCountResponse {
	reasons := make([]string, len(s.LockedReasons))
	for i, r := range s.LockedReasons {
		reasons[i] = string(r)
	}
	return &GuestCountResponse{
		Value:         s.Value,
		Locked:        s.Locked,
		LockedReasons: reasons,
	}
}

// FromPlan converts a domain plan to API response.
func FromPlan(p *schedule.Plan) *PlanResponse {
	return &PlanResponse{
		Strategy:     string(p.Strategy),
		Total:        money.FromCents(p.TotalCents),
		Deposit:      p.DepositAmount(),
		Remaining:    p.RemainingBalance(),
		AmountDueNow: money.FromCents(p.AmountDueNow()),
		PlanMonths:   p.PlanMonths,
		PerMonth:     money.FromCents(p.PerMonthCents),
		LastPayment:  money.FromCents(p.LastPaymentCents),
		NextChargeAt: p.NextChargeAt,
		FinalDueAt:   p.FinalDueAt,
	}
}

// FromBooking converts a domain booking to API response.
func FromBooking(b *booking.Booking) *BookingResponse {
	reasons := make([]string, len(b.GuestLockReasons))
	for i, r := range b.GuestLockReasons {
		reasons[i] = string(r)
	}
	return &BookingResponse{
		ID:               b.ID.String(),
		SessionID:        b.SessionID,
		CoupleName:       b.CoupleName,
		Email:            b.Email,
		WeddingDate:      b.WeddingDate,
		VenueBooked:      b.VenueBooked,
		CateringBooked:   b.CateringBooked,
		DessertBooked:    b.DessertBooked,
		GuestCount:       b.GuestCount,
		GuestCountLocked: b.GuestCountLocked,
		GuestLockReasons: reasons,
		AgreementURL:     b.AgreementURL,
		TotalSpent:       money.FromCents(b.TotalSpentCents),
		Status:           string(b.Status),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// FromPurchase converts a purchase-history entry to API response.
func FromPurchase(p *booking.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:          p.ID.String(),
		Flow:        string(p.Flow),
		Description: p.Description,
		Amount:      money.FromCents(p.AmountCents),
		CreatedAt:   p.CreatedAt,
	}
}

// FromInstallment converts an installment to API response.
func FromInstallment(i *booking.Installment) *InstallmentResponse {
	return &InstallmentResponse{
		ID:       i.ID.String(),
		Sequence: i.Sequence,
		Amount:   money.FromCents(i.AmountCents),
		DueAt:    i.DueAt,
		Status:   string(i.Status),
		Attempts: i.Attempts,
		PaidAt:   i.PaidAt,
	}
}
