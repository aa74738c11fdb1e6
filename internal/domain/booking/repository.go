package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error

	AddPurchase(ctx context.Context, p *Purchase) error
	ListPurchases(ctx context.Context, bookingID uuid.UUID) ([]*Purchase, error)
	IncrementSpend(ctx context.Context, bookingID uuid.UUID, amountCents int64) error

	SavePlanSnapshot(ctx context.Context, snap PlanSnapshot) error
	GetPlanSnapshot(ctx context.Context, bookingID uuid.UUID) (*PlanSnapshot, error)
}

// InstallmentRepository defines persistence for the autopay schedule.
type InstallmentRepository interface {
	CreateBatch(ctx context.Context, installments []*Installment) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Installment, error)
	Update(ctx context.Context, i *Installment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Installment, error)
}
