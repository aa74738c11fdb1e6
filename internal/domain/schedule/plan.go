package schedule

import (
	"time"

	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/money"
)

// Strategy identifies how the couple chose to pay at checkout.
type Strategy string

const (
	StrategyDeposit Strategy = "deposit"
	StrategyFull    Strategy = "full"
)

// Plan is the derived deposit/installment schedule for one booking. It is
// recomputed whenever total, deposit percent, or dates change and only
// persisted as an immutable snapshot once the booking is finalized.
type Plan struct {
	Strategy         Strategy
	TotalCents       int64
	DepositCents     int64
	RemainingCents   int64
	PlanMonths       int
	PerMonthCents    int64
	LastPaymentCents int64
	NextChargeAt     *time.Time
	FinalDueAt       *time.Time
}

// DepositAmount returns the deposit in dollars.
func (p *Plan) DepositAmount() float64 { return money.FromCents(p.DepositCents) }

// RemainingBalance returns the post-deposit balance in dollars.
func (p *Plan) RemainingBalance() float64 { return money.FromCents(p.RemainingCents) }

// AmountDueNow returns the cents captured at checkout: the full total for a
// pay-in-full plan, otherwise the deposit.
func (p *Plan) AmountDueNow() int64 {
	if p.Strategy == StrategyFull {
		return p.TotalCents
	}
	return p.DepositCents
}

// HasInstallments reports whether any balance remains to be auto-charged.
func (p *Plan) HasInstallments() bool { return p.PlanMonths > 0 }

// BuildInput holds the inputs to BuildPlan. Today is explicit so the
// function stays deterministic and testable; callers pass "now".
type BuildInput struct {
	Total          float64
	DepositPercent float64
	PayInFull      bool
	WeddingDate    *time.Time
	FinalDueDays   int
	Today          time.Time
}

// BuildPlan converts a total price into a deposit/installment schedule
// anchored to the wedding date. Pure: identical inputs produce identical
// output. Cent-level invariants:
//
//	depositCents + remainingCents == totalCents
//	perMonthCents*(planMonths-1) + lastPaymentCents == remainingCents
//
// Integer division assigns all rounding remainder to the final payment; that
// is the only place remainder may accumulate.
func BuildPlan(in BuildInput) (*Plan, error) {
	if in.Total < 0 {
		return nil, domainErrors.NewValidationError("total", "cannot be negative")
	}
	if in.DepositPercent < 0 || in.DepositPercent > 1 {
		return nil, domainErrors.NewValidationError("deposit_percent", "must be between 0 and 1")
	}
	if in.FinalDueDays < 0 {
		return nil, domainErrors.NewValidationError("final_due_days", "cannot be negative")
	}

	pct := in.DepositPercent
	strategy := StrategyDeposit
	if in.PayInFull || pct >= 1 {
		pct = 1
		strategy = StrategyFull
	}

	totalCents := money.ToCents(in.Total)

	depositDollars := money.Round2(in.Total * pct)
	depositCents := money.ToCents(depositDollars)
	remainingCents := totalCents - depositCents
	if strategy == StrategyFull || remainingCents < 0 {
		depositCents = totalCents
		remainingCents = 0
	}

	plan := &Plan{
		Strategy:       strategy,
		TotalCents:     totalCents,
		DepositCents:   depositCents,
		RemainingCents: remainingCents,
	}

	if remainingCents == 0 || in.WeddingDate == nil {
		return plan, nil
	}

	finalDue := StartOfDayUTC(DaysBefore(*in.WeddingDate, in.FinalDueDays))
	months := MonthsBetweenInclusive(StartOfDayUTC(in.Today), finalDue)
	perMonth := remainingCents / int64(months)
	lastPayment := remainingCents - perMonth*int64(months-1)
	nextCharge := FirstOfNextMonthUTC(in.Today)

	plan.PlanMonths = months
	plan.PerMonthCents = perMonth
	plan.LastPaymentCents = lastPayment
	plan.NextChargeAt = &nextCharge
	plan.FinalDueAt = &finalDue
	return plan, nil
}
