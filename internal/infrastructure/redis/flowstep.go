package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/redis/go-redis/v9"
)

// stepThankYou is the terminal wizard step written after a finalized
// checkout; a remounting flow reads it and lands on the thank-you screen.
const stepThankYou = "thank-you"

const flowStepTTL = 30 * 24 * time.Hour

// FlowSteps stores each session's per-flow wizard step.
type FlowSteps struct {
	client *redis.Client
}

func NewFlowSteps(client *redis.Client) *FlowSteps {
	return &FlowSteps{client: client}
}

func flowStepKey(sessionID string, flow booking.Flow) string {
	return fmt.Sprintf("flowstep:%s:%s", sessionID, flow)
}

// AdvanceToThankYou moves the given flow onto its thank-you screen.
func (f *FlowSteps) AdvanceToThankYou(ctx context.Context, sessionID string, flow booking.Flow) error {
	if err := f.client.Set(ctx, flowStepKey(sessionID, flow), stepThankYou, flowStepTTL).Err(); err != nil {
		return fmt.Errorf("failed to advance flow step: %w", err)
	}
	return nil
}

// Get returns the stored step for a flow, or "" when the flow is untouched.
func (f *FlowSteps) Get(ctx context.Context, sessionID string, flow booking.Flow) (string, error) {
	step, err := f.client.Get(ctx, flowStepKey(sessionID, flow)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read flow step: %w", err)
	}
	return step, nil
}
