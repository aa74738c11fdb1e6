package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestBuildPlan_QuarterDepositScenario(t *testing.T) {
	wedding := utcDate(2025, 7, 1)

	plan, err := BuildPlan(BuildInput{
		Total:          1000.00,
		DepositPercent: 0.25,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyDeposit, plan.Strategy)
	assert.Equal(t, int64(100000), plan.TotalCents)
	assert.Equal(t, int64(25000), plan.DepositCents)
	assert.Equal(t, int64(75000), plan.RemainingCents)
	assert.Equal(t, 5, plan.PlanMonths)
	assert.Equal(t, int64(15000), plan.PerMonthCents)
	assert.Equal(t, int64(15000), plan.LastPaymentCents)

	require.NotNil(t, plan.FinalDueAt)
	assert.Equal(t, time.Date(2025, 5, 27, 0, 0, 1, 0, time.UTC), *plan.FinalDueAt)
	require.NotNil(t, plan.NextChargeAt)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC), *plan.NextChargeAt)
}

func TestBuildPlan_TailAbsorbsRemainder(t *testing.T) {
	wedding := utcDate(2025, 5, 10)

	plan, err := BuildPlan(BuildInput{
		Total:          100.01,
		DepositPercent: 0,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 20),
	})
	require.NoError(t, err)

	require.Equal(t, 3, plan.PlanMonths)
	assert.Equal(t, int64(3333), plan.PerMonthCents)
	assert.Equal(t, int64(3335), plan.LastPaymentCents)
}

func TestBuildPlan_ReconcilesToTheCent(t *testing.T) {
	wedding := utcDate(2026, 9, 12)
	today := utcDate(2025, 11, 3)

	totals := []float64{0, 0.01, 1.005, 99.99, 1000, 12345.67, 100.01, 33.34}
	percents := []float64{0, 0.1, 0.25, 0.3333, 0.5, 0.75, 1}

	for _, total := range totals {
		for _, pct := range percents {
			plan, err := BuildPlan(BuildInput{
				Total:          total,
				DepositPercent: pct,
				WeddingDate:    &wedding,
				FinalDueDays:   35,
				Today:          today,
			})
			require.NoError(t, err)

			assert.Equal(t, plan.TotalCents, plan.DepositCents+plan.RemainingCents,
				"deposit+remaining must equal total for total=%v pct=%v", total, pct)

			if plan.PlanMonths > 0 {
				sum := plan.PerMonthCents*int64(plan.PlanMonths-1) + plan.LastPaymentCents
				assert.Equal(t, plan.RemainingCents, sum,
					"installments must reconcile for total=%v pct=%v", total, pct)
			}
		}
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	wedding := utcDate(2025, 7, 1)
	in := BuildInput{
		Total:          4321.99,
		DepositPercent: 0.25,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 1),
	}

	first, err := BuildPlan(in)
	require.NoError(t, err)
	second, err := BuildPlan(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPlan_SingleMonthCollapsesToTail(t *testing.T) {
	wedding := utcDate(2025, 2, 20)

	plan, err := BuildPlan(BuildInput{
		Total:          500,
		DepositPercent: 0.5,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 10),
	})
	require.NoError(t, err)

	require.Equal(t, 1, plan.PlanMonths)
	assert.Equal(t, plan.RemainingCents, plan.LastPaymentCents)
}

func TestBuildPlan_ZeroTotal(t *testing.T) {
	wedding := utcDate(2025, 7, 1)

	plan, err := BuildPlan(BuildInput{
		Total:          0,
		DepositPercent: 0.25,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.DepositCents)
	assert.Equal(t, int64(0), plan.RemainingCents)
	assert.Equal(t, 0, plan.PlanMonths)
	assert.Nil(t, plan.NextChargeAt)
	assert.False(t, plan.HasInstallments())
}

func TestBuildPlan_PayInFull(t *testing.T) {
	wedding := utcDate(2025, 7, 1)

	plan, err := BuildPlan(BuildInput{
		Total:          1000,
		DepositPercent: 0.25,
		PayInFull:      true,
		WeddingDate:    &wedding,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyFull, plan.Strategy)
	assert.Equal(t, int64(100000), plan.DepositCents)
	assert.Equal(t, int64(0), plan.RemainingCents)
	assert.Equal(t, 0, plan.PlanMonths)
	assert.Equal(t, int64(100000), plan.AmountDueNow())
}

func TestBuildPlan_NoWeddingDate(t *testing.T) {
	plan, err := BuildPlan(BuildInput{
		Total:          1000,
		DepositPercent: 0.25,
		WeddingDate:    nil,
		FinalDueDays:   35,
		Today:          utcDate(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(75000), plan.RemainingCents)
	assert.Equal(t, 0, plan.PlanMonths)
	assert.Nil(t, plan.FinalDueAt)
}

func TestBuildPlan_RejectsInvalidInput(t *testing.T) {
	today := utcDate(2025, 1, 1)

	_, err := BuildPlan(BuildInput{Total: -1, DepositPercent: 0.25, Today: today})
	assert.Error(t, err, "negative total must fail, not clamp")

	_, err = BuildPlan(BuildInput{Total: 100, DepositPercent: 1.5, Today: today})
	assert.Error(t, err)

	_, err = BuildPlan(BuildInput{Total: 100, DepositPercent: -0.1, Today: today})
	assert.Error(t, err)

	_, err = BuildPlan(BuildInput{Total: 100, DepositPercent: 0.5, FinalDueDays: -1, Today: today})
	assert.Error(t, err)
}

func TestPlan_AmountDueNow(t *testing.T) {
	deposit := &Plan{Strategy: StrategyDeposit, TotalCents: 100000, DepositCents: 25000}
	assert.Equal(t, int64(25000), deposit.AmountDueNow())

	full := &Plan{Strategy: StrategyFull, TotalCents: 100000, DepositCents: 100000}
	assert.Equal(t, int64(100000), full.AmountDueNow())
}
