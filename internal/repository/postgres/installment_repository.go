package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
)

// InstallmentRepository implements booking.InstallmentRepository using PostgreSQL.
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository.
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

func (r *InstallmentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const installmentColumns = `id, booking_id, sequence, amount, due_at, status,
	attempts, max_attempts, last_error, paid_at, created_at, updated_at`

// CreateBatch inserts the full installment schedule for a plan in one round.
func (r *InstallmentRepository) CreateBatch(ctx context.Context, installments []*booking.Installment) error {
	for _, i := range installments {
		_, err := r.db(ctx).Exec(ctx,
			`INSERT INTO installments
			 (id, booking_id, sequence, amount, due_at, status,
			  attempts, max_attempts, last_error, paid_at, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			i.ID, i.BookingID, i.Sequence, centsToNumericString(i.AmountCents), i.DueAt, string(i.Status),
			i.Attempts, i.MaxAttempts, i.LastError, i.PaidAt, i.CreatedAt, i.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", i.Sequence, err)
		}
	}
	return nil
}

// ListDue returns scheduled installments whose due date has passed, oldest
// first. Failed installments with attempts left are picked up too so the
// biller can retry them.
func (r *InstallmentRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*booking.Installment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+installmentColumns+`
		 FROM installments
		 WHERE due_at <= $1
		   AND (status = 'scheduled' OR (status = 'failed' AND attempts < max_attempts))
		 ORDER BY due_at ASC
		 LIMIT $2`, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due installments: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// Update persists an installment's state after a charge attempt.
func (r *InstallmentRepository) Update(ctx context.Context, i *booking.Installment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE installments SET
		  status=$1, attempts=$2, last_error=$3, paid_at=$4, updated_at=$5
		 WHERE id=$6`,
		string(i.Status), i.Attempts, i.LastError, i.PaidAt, i.UpdatedAt, i.ID,
	)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookingNotFound
	}
	return nil
}

// ListByBooking returns the full schedule for a booking in charge order.
func (r *InstallmentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*booking.Installment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+installmentColumns+`
		 FROM installments WHERE booking_id = $1 ORDER BY sequence ASC`, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *InstallmentRepository) collect(rows pgx.Rows) ([]*booking.Installment, error) {
	var out []*booking.Installment
	for rows.Next() {
		i := &booking.Installment{}
		var status, amountStr string
		if err := rows.Scan(
			&i.ID, &i.BookingID, &i.Sequence, &amountStr, &i.DueAt, &status,
			&i.Attempts, &i.MaxAttempts, &i.LastError, &i.PaidAt, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		cents, err := numericStringToCents(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse installment amount: %w", err)
		}
		i.AmountCents = cents
		i.Status = booking.InstallmentStatus(status)
		out = append(out, i)
	}
	return out, rows.Err()
}
