package providers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
)

// MockProcessor simulates a card processor for local development and tests.
type MockProcessor struct {
	name        string
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration
	timeoutRate float64 // 0.0 to 1.0
}

type MockProcessorOption func(*MockProcessor)

func WithFailureRate(rate float64) MockProcessorOption {
	return func(p *MockProcessor) { p.failureRate = rate }
}

func WithLatency(d time.Duration) MockProcessorOption {
	return func(p *MockProcessor) { p.latency = d }
}

func WithTimeoutRate(rate float64) MockProcessorOption {
	return func(p *MockProcessor) { p.timeoutRate = rate }
}

func NewMockProcessor(name string, opts ...MockProcessorOption) *MockProcessor {
	p := &MockProcessor{
		name:        name,
		failureRate: 0.0,
		latency:     100 * time.Millisecond,
		timeoutRate: 0.0,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *MockProcessor) Name() string { return p.name }

func (p *MockProcessor) EnsureDefaultPaymentMethod(ctx context.Context, customerID string) error {
	select {
	case <-time.After(p.latency):
	case <-ctx.Done():
		return ctx.Err()
	}

	if customerID == "" {
		return domainErrors.ErrInvalidInput
	}
	if rand.Float64() < p.failureRate {
		return domainErrors.ErrProcessorRejected
	}
	return nil
}

func (p *MockProcessor) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	// Simulate latency
	select {
	case <-time.After(p.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Simulate timeout
	if rand.Float64() < p.timeoutRate {
		return nil, domainErrors.ErrProcessorTimeout
	}

	// Simulate failure
	if rand.Float64() < p.failureRate {
		return &ChargeResult{
			Status:       "failed",
			ErrorMessage: fmt.Sprintf("%s: simulated charge failure for customer %s", p.name, req.CustomerID),
		}, domainErrors.ErrProcessorRejected
	}

	return &ChargeResult{
		TransactionID: fmt.Sprintf("%s_ch_%s", p.name, uuid.New().String()[:8]),
		Status:        "success",
	}, nil
}
