package redis

import (
	"context"

	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/rs/zerolog"
)

// Event types published to the booking stream.
const (
	EventBookingChanged     = "booking.changed"
	EventInstallmentCharged = "installment.charged"
)

// BookingNotifier publishes booking change events onto the booking stream.
// Satisfies the checkout notifier port.
type BookingNotifier struct {
	producer *StreamProducer
}

func NewBookingNotifier(producer *StreamProducer) *BookingNotifier {
	return &BookingNotifier{producer: producer}
}

func (n *BookingNotifier) BookingChanged(ctx context.Context, bookingID string, data map[string]any) error {
	return n.producer.PublishBookingEvent(ctx, bookingID, EventBookingChanged, data)
}

// GuestCountPublisher forwards in-process guest-count broadcasts onto the
// booking stream so dashboards in other processes see them. Fire-and-forget,
// matching the in-process listener contract.
type GuestCountPublisher struct {
	producer eventProducer
	logger   zerolog.Logger
}

// eventProducer narrows StreamProducer for the publisher, mostly so failure
// handling stays testable without a live redis.
type eventProducer interface {
	PublishBookingEvent(ctx context.Context, subjectID string, eventType string, data map[string]any) error
}

func NewGuestCountPublisher(producer eventProducer, logger zerolog.Logger) *GuestCountPublisher {
	return &GuestCountPublisher{producer: producer, logger: logger}
}

// Attach subscribes the publisher to a session store.
func (p *GuestCountPublisher) Attach(store *guestcount.Store) {
	sessionID := store.SessionID()
	store.Subscribe(func(event string, state guestcount.State) {
		reasons := make([]string, len(state.LockedReasons))
		for i, r := range state.LockedReasons {
			reasons[i] = string(r)
		}
		err := p.producer.PublishBookingEvent(context.Background(), sessionID, event, map[string]any{
			"value":   state.Value,
			"locked":  state.Locked,
			"reasons": reasons,
		})
		if err != nil {
			p.logger.Warn().Err(err).
				Str("session_id", sessionID).
				Str("event", event).
				Msg("Failed to publish guest count event")
		}
	})
}
