package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StreamReader is the consumer-group surface the relay needs.
type StreamReader interface {
	Read(ctx context.Context) ([]redis.XStream, error)
	Ack(ctx context.Context, messageID string) error
}

// Relay drains the booking stream into the operational log. The storefront
// dashboards tail this feed; the relay is also what keeps the consumer group
// from backing up when no dashboard is attached.
type Relay struct {
	reader StreamReader
	logger zerolog.Logger
}

// NewRelay creates a booking event relay.
func NewRelay(reader StreamReader, logger zerolog.Logger) *Relay {
	return &Relay{reader: reader, logger: logger}
}

// Run consumes booking events until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		streams, err := r.reader.Read(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to read booking events")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				eventType, _ := msg.Values["event_type"].(string)
				subjectID, _ := msg.Values["subject_id"].(string)
				r.logger.Info().
					Str("event_type", eventType).
					Str("subject_id", subjectID).
					Msg("Booking event")
				if err := r.reader.Ack(ctx, msg.ID); err != nil {
					r.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to ack booking event")
				}
			}
		}
	}
}
