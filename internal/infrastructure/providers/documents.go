package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/application/checkout"
)

// MockDocumentService stands in for the PDF render-and-upload pipeline.
// Real deployments point this at the document rendering service; the finalize
// sequence treats every implementation as best-effort.
type MockDocumentService struct {
	baseURL string
	latency time.Duration
	err     error
}

type MockDocumentOption func(*MockDocumentService)

func WithDocumentError(err error) MockDocumentOption {
	return func(s *MockDocumentService) { s.err = err }
}

func WithDocumentLatency(d time.Duration) MockDocumentOption {
	return func(s *MockDocumentService) { s.latency = d }
}

func NewMockDocumentService(baseURL string, opts ...MockDocumentOption) *MockDocumentService {
	s := &MockDocumentService{
		baseURL: baseURL,
		latency: 150 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *MockDocumentService) GenerateAgreement(ctx context.Context, facts checkout.AgreementFacts) (string, error) {
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s/agreements/%s-%s.pdf", s.baseURL, facts.BookingID, uuid.New().String()[:8]), nil
}
