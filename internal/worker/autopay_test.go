package worker

import (
	"context"
	"testing"
	"time"

	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
	"github.com/oakhollow/banquet/internal/infrastructure/providers"
	"github.com/oakhollow/banquet/internal/testutil"
	"github.com/oakhollow/banquet/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLock struct{ denied bool }

func (l *noopLock) Acquire(context.Context) (bool, error) { return !l.denied, nil }
func (l *noopLock) Release(context.Context) error         { return nil }

type capturingPublisher struct {
	events []string
}

func (p *capturingPublisher) PublishBookingEvent(_ context.Context, _ string, eventType string, _ map[string]any) error {
	p.events = append(p.events, eventType)
	return nil
}

// recordingProcessor captures each charge request before delegating.
type recordingProcessor struct {
	*providers.MockProcessor
	requests []providers.ChargeRequest
}

func (p *recordingProcessor) Charge(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeResult, error) {
	p.requests = append(p.requests, req)
	return p.MockProcessor.Charge(ctx, req)
}

type billerFixture struct {
	bookings     *testutil.MockBookingRepository
	installments *testutil.MockInstallmentRepository
	publisher    *capturingPublisher
	biller       *Biller
}

func newBillerFixture(t *testing.T, proc providers.Processor, lockDenied bool) *billerFixture {
	t.Helper()
	f := &billerFixture{
		bookings:     testutil.NewMockBookingRepository(),
		installments: testutil.NewMockInstallmentRepository(),
		publisher:    &capturingPublisher{},
	}
	f.biller = NewBiller(
		f.installments,
		f.bookings,
		providers.NewFactory(proc),
		proc.Name(),
		func(string) Locker { return &noopLock{denied: lockDenied} },
		f.publisher,
		retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		50,
		observability.NewMetrics("test", prometheus.NewRegistry()),
		zerolog.Nop(),
	)
	return f
}

// seedDueInstallments stores a booking with a payment method on file plus
// its installment schedule, every row already due.
func seedDueInstallments(t *testing.T, f *billerFixture, count int) *booking.Booking {
	t.Helper()
	ctx := context.Background()

	b := testutil.NewTestBooking("session-1")
	customer := "cus_test"
	b.ProcessorCustomerID = &customer
	f.bookings.AddBooking(b)

	plan := testutil.NewTestPlan()
	plan.PlanMonths = count
	plan.PerMonthCents = 15000
	plan.LastPaymentCents = 15000
	due := time.Now().Add(-time.Hour)
	plan.NextChargeAt = &due

	snap := booking.SnapshotPlan(b.ID, plan)
	require.NoError(t, f.bookings.SavePlanSnapshot(ctx, snap))

	rows := booking.BuildInstallments(snap)
	require.Len(t, rows, count)
	for _, r := range rows {
		r.DueAt = time.Now().Add(-time.Minute)
	}
	require.NoError(t, f.installments.CreateBatch(ctx, rows))
	return b
}

func TestBiller_ChargesDueInstallment(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0))
	f := newBillerFixture(t, proc, false)
	b := seedDueInstallments(t, f, 2)

	attempted, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)

	rows, err := f.installments.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, booking.InstallmentPaid, r.Status)
		assert.NotNil(t, r.PaidAt)
	}

	// Lifetime spend grew by both charges.
	updated, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), updated.TotalSpentCents)

	assert.Equal(t, []string{"installment.charged", "installment.charged"}, f.publisher.events)
}

func TestBiller_ChargeRequestCarriesBookingMetadata(t *testing.T) {
	proc := &recordingProcessor{
		MockProcessor: providers.NewMockProcessor("stripe", providers.WithLatency(0)),
	}
	f := newBillerFixture(t, proc, false)
	b := seedDueInstallments(t, f, 1)

	_, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, proc.requests, 1)
	req := proc.requests[0]
	assert.Equal(t, "cus_test", req.CustomerID)
	assert.Equal(t, int64(15000), req.AmountCents)
	assert.Equal(t, b.ID.String(), req.Metadata["booking_id"])

	rows, err := f.installments.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, rows[0].ID.String(), req.Metadata["installment_id"])
}

func TestBiller_SettlesPlanWhenAllPaid(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0))
	f := newBillerFixture(t, proc, false)
	b := seedDueInstallments(t, f, 2)

	_, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)

	snap, ok := f.bookings.Snapshot(b.ID)
	require.True(t, ok)
	assert.Equal(t, booking.PlanStatusSettled, snap.Status)
}

func TestBiller_SkipsLockedInstallments(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0))
	f := newBillerFixture(t, proc, true)
	b := seedDueInstallments(t, f, 1)

	_, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)

	rows, err := f.installments.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.InstallmentScheduled, rows[0].Status)
	assert.Empty(t, f.publisher.events)
}

func TestBiller_MarksFailedOnProcessorRejection(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0), providers.WithFailureRate(1))
	f := newBillerFixture(t, proc, false)
	b := seedDueInstallments(t, f, 1)

	_, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)

	rows, err := f.installments.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.InstallmentFailed, rows[0].Status)
	require.NotNil(t, rows[0].LastError)
	assert.True(t, rows[0].CanRetry())
	assert.Empty(t, f.publisher.events)
}

func TestBiller_FailsWithoutPaymentMethod(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0))
	f := newBillerFixture(t, proc, false)
	b := seedDueInstallments(t, f, 1)

	// Strip the stored payment method.
	b.ProcessorCustomerID = nil

	_, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)

	rows, err := f.installments.ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.InstallmentFailed, rows[0].Status)
	assert.Contains(t, *rows[0].LastError, "no payment method")
}

func TestBiller_NothingDue(t *testing.T) {
	proc := providers.NewMockProcessor("stripe", providers.WithLatency(0))
	f := newBillerFixture(t, proc, false)

	attempted, err := f.biller.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, attempted)
}
