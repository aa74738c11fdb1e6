package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	b, err := NewBooking("session-1", "Avery & Jordan", "avery@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, b.Status)
	assert.False(t, b.VenueBooked)
	assert.Equal(t, int64(0), b.TotalSpentCents)
}

func TestNewBooking_RequiresSession(t *testing.T) {
	_, err := NewBooking("", "Avery & Jordan", "avery@example.com")
	assert.Error(t, err)
}

func TestBooking_StateMachine(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"draft to confirmed", StatusDraft, StatusConfirmed, true},
		{"draft to cancelled", StatusDraft, StatusCancelled, true},
		{"draft to completed", StatusDraft, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			if tt.allowed {
				assert.NoError(t, b.TransitionTo(tt.to))
				assert.Equal(t, tt.to, b.Status)
			} else {
				assert.Error(t, b.TransitionTo(tt.to))
				assert.Equal(t, tt.from, b.Status)
			}
		})
	}
}

func TestBooking_MarkFlowBooked(t *testing.T) {
	b := &Booking{}
	b.MarkFlowBooked(FlowCatering)
	assert.True(t, b.CateringBooked)
	assert.False(t, b.VenueBooked)
	assert.False(t, b.DessertBooked)
}

func TestSnapshotPlan(t *testing.T) {
	next := time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC)
	final := time.Date(2025, 5, 27, 0, 0, 1, 0, time.UTC)
	id := uuid.New()

	snap := SnapshotPlan(id, &schedule.Plan{
		Strategy:         schedule.StrategyDeposit,
		TotalCents:       100000,
		DepositCents:     25000,
		RemainingCents:   75000,
		PlanMonths:       5,
		PerMonthCents:    15000,
		LastPaymentCents: 15000,
		NextChargeAt:     &next,
		FinalDueAt:       &final,
	})

	assert.Equal(t, PlanStatusActive, snap.Status)
	assert.Equal(t, id, snap.BookingID)
	assert.Equal(t, int64(75000), snap.RemainingCents)

	settled := SnapshotPlan(id, &schedule.Plan{
		Strategy:     schedule.StrategyFull,
		TotalCents:   100000,
		DepositCents: 100000,
	})
	assert.Equal(t, PlanStatusSettled, settled.Status)
}

func TestBuildInstallments(t *testing.T) {
	next := time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC)
	snap := PlanSnapshot{
		BookingID:        uuid.New(),
		PlanMonths:       3,
		PerMonthCents:    3333,
		LastPaymentCents: 3335,
		RemainingCents:   10001,
		NextChargeAt:     &next,
	}

	rows := BuildInstallments(snap)
	require.Len(t, rows, 3)

	var sum int64
	for i, row := range rows {
		sum += row.AmountCents
		assert.Equal(t, i+1, row.Sequence)
		assert.Equal(t, InstallmentScheduled, row.Status)
		assert.Equal(t, next.AddDate(0, i, 0), row.DueAt)
	}
	assert.Equal(t, snap.RemainingCents, sum, "installment amounts must reconcile")
	assert.Equal(t, int64(3335), rows[2].AmountCents)
}

func TestBuildInstallments_NoPlan(t *testing.T) {
	assert.Nil(t, BuildInstallments(PlanSnapshot{PlanMonths: 0}))
}

func TestInstallment_ChargeLifecycle(t *testing.T) {
	i := &Installment{Status: InstallmentScheduled, MaxAttempts: 3}

	require.NoError(t, i.MarkCharging())
	assert.Equal(t, 1, i.Attempts)
	require.NoError(t, i.MarkPaid())
	assert.NotNil(t, i.PaidAt)

	assert.Error(t, i.MarkCharging(), "paid installments never recharge")
}

func TestInstallment_RetryBudget(t *testing.T) {
	i := &Installment{Status: InstallmentScheduled, MaxAttempts: 2}

	require.NoError(t, i.MarkCharging())
	require.NoError(t, i.MarkFailed("card declined"))
	assert.True(t, i.CanRetry())

	require.NoError(t, i.MarkCharging())
	require.NoError(t, i.MarkFailed("card declined"))
	assert.False(t, i.CanRetry())
	assert.ErrorIs(t, i.MarkCharging(), domainErrors.ErrMaxRetriesExceeded)
}
