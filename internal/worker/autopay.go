package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
	"github.com/oakhollow/banquet/internal/infrastructure/providers"
	"github.com/oakhollow/banquet/pkg/retry"
	"github.com/rs/zerolog"
)

// Locker guards one installment charge across worker instances.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LockFactory builds the distributed lock for an installment.
type LockFactory func(installmentID string) Locker

// EventPublisher pushes installment outcomes onto the booking stream.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, subjectID string, eventType string, data map[string]any) error
}

// Biller collects due installments against each booking's stored payment
// method. One installment is charged at most once per cycle: a distributed
// lock fences concurrent worker instances, and the status transition to
// charging is persisted before the processor is called.
type Biller struct {
	installments  booking.InstallmentRepository
	bookings      booking.Repository
	factory       *providers.Factory
	processorName string
	locks         LockFactory
	publisher     EventPublisher
	retryCfg      retry.Config
	batchSize     int
	metrics       *observability.Metrics
	logger        zerolog.Logger
}

// NewBiller creates an autopay biller.
func NewBiller(
	installments booking.InstallmentRepository,
	bookings booking.Repository,
	factory *providers.Factory,
	processorName string,
	locks LockFactory,
	publisher EventPublisher,
	retryCfg retry.Config,
	batchSize int,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Biller {
	return &Biller{
		installments:  installments,
		bookings:      bookings,
		factory:       factory,
		processorName: processorName,
		locks:         locks,
		publisher:     publisher,
		retryCfg:      retryCfg,
		batchSize:     batchSize,
		metrics:       metrics,
		logger:        logger,
	}
}

// Run polls for due installments until the context is cancelled.
func (b *Biller) Run(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if _, err := b.RunOnce(ctx, time.Now()); err != nil {
			b.logger.Error().Err(err).Msg("Autopay cycle failed")
		}
	}
}

// RunOnce charges every installment due at now and returns how many were
// attempted.
func (b *Biller) RunOnce(ctx context.Context, now time.Time) (int, error) {
	due, err := b.installments.ListDue(ctx, now, b.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due installments: %w", err)
	}

	attempted := 0
	for _, row := range due {
		if err := b.chargeOne(ctx, row); err != nil {
			if err == domainErrors.ErrInstallmentClaimed {
				continue
			}
			b.logger.Error().Err(err).
				Str("installment_id", row.ID.String()).
				Msg("Installment charge attempt errored")
		}
		attempted++
	}
	return attempted, nil
}

func (b *Biller) chargeOne(ctx context.Context, row *booking.Installment) error {
	lock := b.locks(row.ID.String())
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire charge lock: %w", err)
	}
	if !acquired {
		return domainErrors.ErrInstallmentClaimed
	}
	defer lock.Release(ctx)

	if row.Status == booking.InstallmentFailed {
		b.metrics.InstallmentRetries.Inc()
	}
	if err := row.MarkCharging(); err != nil {
		return err
	}
	if err := b.installments.Update(ctx, row); err != nil {
		return err
	}

	bk, err := b.bookings.GetByID(ctx, row.BookingID)
	if err != nil {
		return b.fail(ctx, row, "booking lookup failed: "+err.Error())
	}
	if bk.ProcessorCustomerID == nil {
		return b.fail(ctx, row, "no payment method on file")
	}

	proc, breaker, err := b.factory.Get(b.processorName)
	if err != nil {
		return b.fail(ctx, row, err.Error())
	}

	result, err := retry.DoWithResult(ctx, b.retryCfg, func() (*providers.ChargeResult, error) {
		return breaker.Execute(func() (*providers.ChargeResult, error) {
			return proc.Charge(ctx, providers.ChargeRequest{
				CustomerID:  *bk.ProcessorCustomerID,
				AmountCents: row.AmountCents,
				Currency:    "USD",
				Description: fmt.Sprintf("Installment %d for booking %s", row.Sequence, row.BookingID),
				Metadata: map[string]any{
					"booking_id":     row.BookingID.String(),
					"installment_id": row.ID.String(),
				},
			})
		})
	})
	if err != nil {
		return b.fail(ctx, row, err.Error())
	}

	if err := row.MarkPaid(); err != nil {
		return err
	}
	if err := b.installments.Update(ctx, row); err != nil {
		return err
	}
	if err := b.bookings.IncrementSpend(ctx, row.BookingID, row.AmountCents); err != nil {
		b.logger.Warn().Err(err).Str("booking_id", row.BookingID.String()).Msg("Failed to update lifetime spend")
	}
	b.metrics.InstallmentCharges.WithLabelValues("paid").Inc()

	b.settleIfComplete(ctx, row.BookingID)

	if err := b.publisher.PublishBookingEvent(ctx, row.BookingID.String(), "installment.charged", map[string]any{
		"installment_id": row.ID.String(),
		"sequence":       row.Sequence,
		"amount_cents":   row.AmountCents,
		"transaction_id": result.TransactionID,
	}); err != nil {
		b.logger.Warn().Err(err).Str("installment_id", row.ID.String()).Msg("Failed to publish charge event")
	}

	b.logger.Info().
		Str("installment_id", row.ID.String()).
		Int("sequence", row.Sequence).
		Int64("amount_cents", row.AmountCents).
		Msg("Installment charged")
	return nil
}

func (b *Biller) fail(ctx context.Context, row *booking.Installment, reason string) error {
	if err := row.MarkFailed(reason); err != nil {
		return err
	}
	if err := b.installments.Update(ctx, row); err != nil {
		return err
	}
	b.metrics.InstallmentCharges.WithLabelValues("failed").Inc()
	b.logger.Warn().
		Str("installment_id", row.ID.String()).
		Str("reason", reason).
		Bool("retryable", row.CanRetry()).
		Msg("Installment charge failed")
	return nil
}

// settleIfComplete flips the plan snapshot to settled once every installment
// for the booking is paid.
func (b *Biller) settleIfComplete(ctx context.Context, bookingID uuid.UUID) {
	rows, err := b.installments.ListByBooking(ctx, bookingID)
	if err != nil || len(rows) == 0 {
		return
	}
	for _, r := range rows {
		if r.Status != booking.InstallmentPaid {
			return
		}
	}

	snap, err := b.bookings.GetPlanSnapshot(ctx, bookingID)
	if err != nil || snap == nil {
		return
	}
	snap.Status = booking.PlanStatusSettled
	if err := b.bookings.SavePlanSnapshot(ctx, *snap); err != nil {
		b.logger.Warn().Err(err).Str("booking_id", bookingID.String()).Msg("Failed to settle plan snapshot")
	}
}
