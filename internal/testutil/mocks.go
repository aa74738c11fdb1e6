package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
)

// MockBookingRepository is an in-memory booking.Repository for tests.
type MockBookingRepository struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*booking.Booking
	purchases []*booking.Purchase
	snapshots map[uuid.UUID]booking.PlanSnapshot

	UpdateCalls int
	UpdateErr   error
	SnapshotErr error
	PurchaseErr error
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings:  make(map[uuid.UUID]*booking.Booking),
		snapshots: make(map[uuid.UUID]booking.PlanSnapshot),
	}
}

func (m *MockBookingRepository) AddBooking(b *booking.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

func (m *MockBookingRepository) Create(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *MockBookingRepository) GetByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, domainErrors.ErrBookingNotFound
}

func (m *MockBookingRepository) GetBySessionID(_ context.Context, sessionID string) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.SessionID == sessionID {
			return b, nil
		}
	}
	return nil, domainErrors.ErrBookingNotFound
}

func (m *MockBookingRepository) Update(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *MockBookingRepository) AddPurchase(_ context.Context, p *booking.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PurchaseErr != nil {
		return m.PurchaseErr
	}
	m.purchases = append(m.purchases, p)
	return nil
}

func (m *MockBookingRepository) ListPurchases(_ context.Context, bookingID uuid.UUID) ([]*booking.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*booking.Purchase
	for _, p := range m.purchases {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockBookingRepository) IncrementSpend(_ context.Context, bookingID uuid.UUID, amountCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[bookingID]; ok {
		b.TotalSpentCents += amountCents
		return nil
	}
	return domainErrors.ErrBookingNotFound
}

func (m *MockBookingRepository) SavePlanSnapshot(_ context.Context, snap booking.PlanSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotErr != nil {
		return m.SnapshotErr
	}
	m.snapshots[snap.BookingID] = snap
	return nil
}

func (m *MockBookingRepository) GetPlanSnapshot(_ context.Context, bookingID uuid.UUID) (*booking.PlanSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snapshots[bookingID]; ok {
		copied := snap
		return &copied, nil
	}
	return nil, domainErrors.ErrBookingNotFound
}

func (m *MockBookingRepository) Purchases() []*booking.Purchase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*booking.Purchase(nil), m.purchases...)
}

func (m *MockBookingRepository) Snapshot(bookingID uuid.UUID) (booking.PlanSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[bookingID]
	return snap, ok
}

// MockInstallmentRepository is an in-memory booking.InstallmentRepository.
type MockInstallmentRepository struct {
	mu           sync.Mutex
	installments []*booking.Installment
	CreateErr    error
}

func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{}
}

func (m *MockInstallmentRepository) CreateBatch(_ context.Context, rows []*booking.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.installments = append(m.installments, rows...)
	return nil
}

func (m *MockInstallmentRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*booking.Installment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*booking.Installment
	for _, i := range m.installments {
		if i.Status == booking.InstallmentScheduled && !i.DueAt.After(now) {
			out = append(out, i)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockInstallmentRepository) Update(_ context.Context, row *booking.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, i := range m.installments {
		if i.ID == row.ID {
			m.installments[idx] = row
			return nil
		}
	}
	return domainErrors.ErrBookingNotFound
}

func (m *MockInstallmentRepository) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*booking.Installment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*booking.Installment
	for _, i := range m.installments {
		if i.BookingID == bookingID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *MockInstallmentRepository) All() []*booking.Installment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*booking.Installment(nil), m.installments...)
}

// MockTransactionManager runs the function directly; tests that need to
// simulate a failed transaction set Err.
type MockTransactionManager struct {
	Err   error
	Calls int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}
