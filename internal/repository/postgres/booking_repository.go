package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/domain/schedule"
)

// BookingRepository implements booking.Repository using PostgreSQL.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const bookingColumns = `id, session_id, couple_name, email, wedding_date,
	venue_booked, catering_booked, dessert_booked,
	guest_count, guest_count_locked, guest_lock_reasons,
	processor_customer_id, agreement_url, total_spent, status, created_at, updated_at`

// Create inserts a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO bookings
		 (id, session_id, couple_name, email, wedding_date,
		  venue_booked, catering_booked, dessert_booked,
		  guest_count, guest_count_locked, guest_lock_reasons,
		  processor_customer_id, agreement_url, total_spent, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		b.ID, b.SessionID, b.CoupleName, b.Email, b.WeddingDate,
		b.VenueBooked, b.CateringBooked, b.DessertBooked,
		b.GuestCount, b.GuestCountLocked, reasonsToStrings(b.GuestLockReasons),
		b.ProcessorCustomerID, b.AgreementURL, centsToNumericString(b.TotalSpentCents), string(b.Status), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.NewDomainError(
				"duplicate_booking",
				"a booking already exists for this session",
				domainErrors.ErrInvalidInput,
			)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.scanBooking(r.db(ctx).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

// GetBySessionID retrieves the booking attached to a storefront session.
func (r *BookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*booking.Booking, error) {
	return r.scanBooking(r.db(ctx).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE session_id = $1`, sessionID))
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE bookings SET
		  couple_name=$1, email=$2, wedding_date=$3,
		  venue_booked=$4, catering_booked=$5, dessert_booked=$6,
		  guest_count=$7, guest_count_locked=$8, guest_lock_reasons=$9,
		  processor_customer_id=$10, agreement_url=$11, total_spent=$12, status=$13, updated_at=$14
		 WHERE id=$15`,
		b.CoupleName, b.Email, b.WeddingDate,
		b.VenueBooked, b.CateringBooked, b.DessertBooked,
		b.GuestCount, b.GuestCountLocked, reasonsToStrings(b.GuestLockReasons),
		b.ProcessorCustomerID, b.AgreementURL, centsToNumericString(b.TotalSpentCents), string(b.Status), b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookingNotFound
	}
	return nil
}

// AddPurchase appends a purchase-history entry.
func (r *BookingRepository) AddPurchase(ctx context.Context, p *booking.Purchase) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO purchases (id, booking_id, flow, description, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.BookingID, string(p.Flow), p.Description, centsToNumericString(p.AmountCents), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// ListPurchases retrieves the purchase history for a booking, oldest first.
func (r *BookingRepository) ListPurchases(ctx context.Context, bookingID uuid.UUID) ([]*booking.Purchase, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, booking_id, flow, description, amount, created_at
		 FROM purchases WHERE booking_id = $1 ORDER BY created_at ASC`, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*booking.Purchase
	for rows.Next() {
		p := &booking.Purchase{}
		var flow, amountStr string
		if err := rows.Scan(&p.ID, &p.BookingID, &flow, &p.Description, &amountStr, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		cents, err := numericStringToCents(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse purchase amount: %w", err)
		}
		p.Flow = booking.Flow(flow)
		p.AmountCents = cents
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// IncrementSpend adds to the booking's lifetime spend counter atomically.
func (r *BookingRepository) IncrementSpend(ctx context.Context, bookingID uuid.UUID, amountCents int64) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE bookings SET total_spent = total_spent + $1, updated_at = NOW() WHERE id = $2`,
		centsToNumericString(amountCents), bookingID,
	)
	if err != nil {
		return fmt.Errorf("increment spend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookingNotFound
	}
	return nil
}

// SavePlanSnapshot upserts the frozen payment plan for a booking.
func (r *BookingRepository) SavePlanSnapshot(ctx context.Context, snap booking.PlanSnapshot) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO plan_snapshots
		 (booking_id, status, strategy, total, deposit, remaining,
		  plan_months, per_month, last_payment, next_charge_at, final_due_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
		 ON CONFLICT (booking_id) DO UPDATE SET
		  status=EXCLUDED.status, strategy=EXCLUDED.strategy,
		  total=EXCLUDED.total, deposit=EXCLUDED.deposit, remaining=EXCLUDED.remaining,
		  plan_months=EXCLUDED.plan_months, per_month=EXCLUDED.per_month, last_payment=EXCLUDED.last_payment,
		  next_charge_at=EXCLUDED.next_charge_at, final_due_at=EXCLUDED.final_due_at, updated_at=NOW()`,
		snap.BookingID, string(snap.Status), string(snap.Strategy),
		centsToNumericString(snap.TotalCents), centsToNumericString(snap.DepositCents), centsToNumericString(snap.RemainingCents),
		snap.PlanMonths, centsToNumericString(snap.PerMonthCents), centsToNumericString(snap.LastPaymentCents),
		snap.NextChargeAt, snap.FinalDueAt,
	)
	if err != nil {
		return fmt.Errorf("save plan snapshot: %w", err)
	}
	return nil
}

// GetPlanSnapshot retrieves the persisted payment plan for a booking.
func (r *BookingRepository) GetPlanSnapshot(ctx context.Context, bookingID uuid.UUID) (*booking.PlanSnapshot, error) {
	snap := &booking.PlanSnapshot{}
	var (
		status, strategy                   string
		totalStr, depositStr, remainingStr string
		perMonthStr, lastPaymentStr        string
	)
	err := r.db(ctx).QueryRow(ctx,
		`SELECT booking_id, status, strategy, total, deposit, remaining,
		        plan_months, per_month, last_payment, next_charge_at, final_due_at
		 FROM plan_snapshots WHERE booking_id = $1`, bookingID,
	).Scan(&snap.BookingID, &status, &strategy, &totalStr, &depositStr, &remainingStr,
		&snap.PlanMonths, &perMonthStr, &lastPaymentStr, &snap.NextChargeAt, &snap.FinalDueAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no plan saved for this booking
		}
		return nil, fmt.Errorf("get plan snapshot: %w", err)
	}

	snap.Status = booking.PlanStatus(status)
	snap.Strategy = schedule.Strategy(strategy)
	for _, conv := range []struct {
		src string
		dst *int64
	}{
		{totalStr, &snap.TotalCents},
		{depositStr, &snap.DepositCents},
		{remainingStr, &snap.RemainingCents},
		{perMonthStr, &snap.PerMonthCents},
		{lastPaymentStr, &snap.LastPaymentCents},
	} {
		cents, err := numericStringToCents(conv.src)
		if err != nil {
			return nil, fmt.Errorf("parse plan amount: %w", err)
		}
		*conv.dst = cents
	}
	return snap, nil
}

func (r *BookingRepository) scanBooking(s scanner) (*booking.Booking, error) {
	b := &booking.Booking{}
	var (
		reasons  []string
		spentStr string
		status   string
	)
	err := s.Scan(
		&b.ID, &b.SessionID, &b.CoupleName, &b.Email, &b.WeddingDate,
		&b.VenueBooked, &b.CateringBooked, &b.DessertBooked,
		&b.GuestCount, &b.GuestCountLocked, &reasons,
		&b.ProcessorCustomerID, &b.AgreementURL, &spentStr, &status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	cents, err := numericStringToCents(spentStr)
	if err != nil {
		return nil, fmt.Errorf("parse total spent: %w", err)
	}
	b.TotalSpentCents = cents
	b.Status = booking.Status(status)
	b.GuestLockReasons = stringsToReasons(reasons)
	return b, nil
}

func reasonsToStrings(reasons []guestcount.LockReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func stringsToReasons(ss []string) []guestcount.LockReason {
	if len(ss) == 0 {
		return nil
	}
	out := make([]guestcount.LockReason, len(ss))
	for i, s := range ss {
		out[i] = guestcount.LockReason(s)
	}
	return out
}
