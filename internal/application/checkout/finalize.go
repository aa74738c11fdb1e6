package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/domain/schedule"
	"github.com/rs/zerolog"
)

// SuccessEvent is one payment-success signal from the checkout widget.
// The plan inside it was derived from values frozen before the payment was
// submitted; the finalizer never re-derives it mid-flight.
type SuccessEvent struct {
	BookingID   uuid.UUID
	SessionID   string
	Flow        booking.Flow
	CustomerID  *string
	Description string
	Plan        *schedule.Plan
}

// Result reports what one finalize invocation did.
type Result struct {
	Replayed           bool
	Booking            *booking.Booking
	AmountChargedCents int64
	AgreementURL       *string
}

// FinalizeUseCase performs the one-time "payment captured -> booking
// recorded" transition. The success callback is known to fire more than once
// on network retry, so each (session, flow) pair carries a guard that is
// flipped synchronously at entry, before any I/O: a duplicate invocation
// racing the first past its first await still hits a set guard.
//
// Guards live in process memory only. A fresh process is a fresh attempt by
// design; the idempotency middleware covers the HTTP retry path across
// restarts.
type FinalizeUseCase struct {
	bookingRepo     booking.Repository
	installmentRepo booking.InstallmentRepository
	txManager       TransactionManager
	sessions        *guestcount.Sessions
	paymentMethods  PaymentMethods
	documents       DocumentService
	stepper         FlowStepper
	notifier        Notifier
	logger          zerolog.Logger

	mu        sync.Mutex
	finalized map[string]bool
}

// NewFinalizeUseCase creates a new FinalizeUseCase.
func NewFinalizeUseCase(
	bookingRepo booking.Repository,
	installmentRepo booking.InstallmentRepository,
	txManager TransactionManager,
	sessions *guestcount.Sessions,
	paymentMethods PaymentMethods,
	documents DocumentService,
	stepper FlowStepper,
	notifier Notifier,
	logger zerolog.Logger,
) *FinalizeUseCase {
	return &FinalizeUseCase{
		bookingRepo:     bookingRepo,
		installmentRepo: installmentRepo,
		txManager:       txManager,
		sessions:        sessions,
		paymentMethods:  paymentMethods,
		documents:       documents,
		stepper:         stepper,
		notifier:        notifier,
		logger:          logger,
		finalized:       make(map[string]bool),
	}
}

// markFinalized flips the guard for the event's flow instance. Returns false
// when the guard was already set. Synchronous: no suspension between check
// and set.
func (uc *FinalizeUseCase) markFinalized(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.finalized[key] {
		return false
	}
	uc.finalized[key] = true
	return true
}

// Execute runs the finalize sequence exactly once per flow instance.
//
// The guard and the authoritative booking write are the atomic core; every
// other step is best-effort. A missing agreement PDF can be regenerated
// later, but an unrecorded paid booking cannot, so a document failure never
// rolls anything back while a booking-write failure is surfaced loudly.
func (uc *FinalizeUseCase) Execute(ctx context.Context, event SuccessEvent) (*Result, error) {
	if event.Plan == nil {
		return nil, domainErrors.NewValidationError("plan", "checkout requires a frozen payment plan")
	}

	guardKey := event.SessionID + "/" + string(event.Flow)
	if !uc.markFinalized(guardKey) {
		uc.logger.Warn().
			Str("session_id", event.SessionID).
			Str("flow", string(event.Flow)).
			Msg("Duplicate finalize invocation ignored")
		return &Result{Replayed: true}, nil
	}

	b, err := uc.bookingRepo.GetByID(ctx, event.BookingID)
	if err != nil {
		return nil, err
	}

	// (1) Persist/refresh the processor customer id if newly provided.
	if event.CustomerID != nil && *event.CustomerID != "" {
		b.ProcessorCustomerID = event.CustomerID
	}

	// (2) Amount actually charged now, from the frozen plan.
	amountCents := event.Plan.AmountDueNow()

	// (3) Future installments need a default payment method on file.
	if event.Plan.HasInstallments() && b.ProcessorCustomerID != nil {
		if err := uc.paymentMethods.EnsureDefaultPaymentMethod(ctx, *b.ProcessorCustomerID); err != nil {
			uc.logger.Error().Err(err).
				Str("booking_id", b.ID.String()).
				Msg("Failed to ensure default payment method, autopay may need attention")
		}
	}

	// (4) Agreement PDF, best-effort.
	guestState := uc.guestState(ctx, event.SessionID)
	agreementURL := uc.generateAgreement(ctx, b, event, guestState, amountCents)

	// (5) Authoritative booking write: flags, purchase history, spend total,
	// plan snapshot, and autopay schedule in one transaction.
	snap := booking.SnapshotPlan(b.ID, event.Plan)
	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		b.MarkFlowBooked(event.Flow)
		b.GuestCount = guestState.Value
		b.GuestCountLocked = guestState.Locked
		b.GuestLockReasons = guestState.LockedReasons
		if agreementURL != nil {
			b.AgreementURL = agreementURL
		}
		if b.Status == booking.StatusDraft {
			if err := b.TransitionTo(booking.StatusConfirmed); err != nil {
				return err
			}
		}
		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}

		if err := uc.bookingRepo.AddPurchase(txCtx, &booking.Purchase{
			ID:          uuid.New(),
			BookingID:   b.ID,
			Flow:        event.Flow,
			Description: event.Description,
			AmountCents: amountCents,
		}); err != nil {
			return err
		}

		if err := uc.bookingRepo.IncrementSpend(txCtx, b.ID, amountCents); err != nil {
			return err
		}

		if err := uc.bookingRepo.SavePlanSnapshot(txCtx, snap); err != nil {
			return err
		}

		if rows := booking.BuildInstallments(snap); len(rows) > 0 {
			return uc.installmentRepo.CreateBatch(txCtx, rows)
		}
		return nil
	})
	if err != nil {
		// Money has already moved; this is the one failure that must reach
		// the user as a contact-support condition.
		return nil, domainErrors.NewDomainError(
			"booking_write_failed",
			fmt.Sprintf("booking %s paid but not recorded", b.ID),
			domainErrors.ErrBookingWriteFailed,
		)
	}

	// (6) Advance the flow onto its thank-you screen.
	if err := uc.stepper.AdvanceToThankYou(ctx, event.SessionID, event.Flow); err != nil {
		uc.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("Failed to advance flow step")
	}

	// (7) Tell any other on-screen widgets.
	if err := uc.notifier.BookingChanged(ctx, b.ID.String(), map[string]any{
		"flow":         string(event.Flow),
		"amount_cents": amountCents,
		"strategy":     string(event.Plan.Strategy),
	}); err != nil {
		uc.logger.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to broadcast booking change")
	}

	return &Result{
		Booking:            b,
		AmountChargedCents: amountCents,
		AgreementURL:       agreementURL,
	}, nil
}

func (uc *FinalizeUseCase) guestState(ctx context.Context, sessionID string) guestcount.State {
	store, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to load guest count for finalize")
		return guestcount.State{}
	}
	return store.Get()
}

func (uc *FinalizeUseCase) generateAgreement(
	ctx context.Context,
	b *booking.Booking,
	event SuccessEvent,
	guestState guestcount.State,
	amountCents int64,
) *string {
	url, err := uc.documents.GenerateAgreement(ctx, AgreementFacts{
		BookingID:      b.ID.String(),
		CoupleName:     b.CoupleName,
		Flow:           event.Flow,
		Description:    event.Description,
		GuestCount:     guestState.Value,
		AmountCents:    amountCents,
		TotalCents:     event.Plan.TotalCents,
		RemainingCents: event.Plan.RemainingCents,
		PlanMonths:     event.Plan.PlanMonths,
	})
	if err != nil {
		uc.logger.Error().Err(err).
			Str("booking_id", b.ID.String()).
			Msg("Agreement generation failed, booking proceeds without document")
		return nil
	}
	return &url
}
