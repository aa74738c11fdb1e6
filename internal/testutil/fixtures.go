package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/oakhollow/banquet/internal/domain/schedule"
)

func NewTestBooking(sessionID string) *booking.Booking {
	now := time.Now()
	wedding := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	return &booking.Booking{
		ID:          uuid.New(),
		SessionID:   sessionID,
		CoupleName:  "Avery & Jordan",
		Email:       "avery@example.com",
		WeddingDate: &wedding,
		Status:      booking.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestPlan returns the quarter-deposit plan for a $1000 total booked on
// 2025-01-01 with a 2025-07-01 wedding.
func NewTestPlan() *schedule.Plan {
	next := time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC)
	final := time.Date(2025, 5, 27, 0, 0, 1, 0, time.UTC)
	return &schedule.Plan{
		Strategy:         schedule.StrategyDeposit,
		TotalCents:       100000,
		DepositCents:     25000,
		RemainingCents:   75000,
		PlanMonths:       5,
		PerMonthCents:    15000,
		LastPaymentCents: 15000,
		NextChargeAt:     &next,
		FinalDueAt:       &final,
	}
}

func NewFullPaymentPlan(totalCents int64) *schedule.Plan {
	return &schedule.Plan{
		Strategy:     schedule.StrategyFull,
		TotalCents:   totalCents,
		DepositCents: totalCents,
	}
}
