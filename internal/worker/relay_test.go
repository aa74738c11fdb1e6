package worker

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	cancel  context.CancelFunc
	batches [][]redis.XStream
	acked   []string
}

func (f *fakeReader) Read(ctx context.Context) ([]redis.XStream, error) {
	if len(f.batches) == 0 {
		f.cancel()
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeReader) Ack(_ context.Context, messageID string) error {
	f.acked = append(f.acked, messageID)
	return nil
}

func TestRelay_AcksEveryMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		batches: [][]redis.XStream{{
			{
				Stream: "bookings:events",
				Messages: []redis.XMessage{
					{ID: "1-0", Values: map[string]any{"event_type": "booking.changed", "subject_id": "b1"}},
					{ID: "2-0", Values: map[string]any{"event_type": "installment.charged", "subject_id": "b1"}},
				},
			},
		}},
	}

	relay := NewRelay(reader, zerolog.Nop())
	require.NoError(t, relay.Run(ctx))

	assert.Equal(t, []string{"1-0", "2-0"}, reader.acked)
}
