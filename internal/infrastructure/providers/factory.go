package providers

import (
	"fmt"
	"time"

	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/sony/gobreaker/v2"
)

type Factory struct {
	processors      map[string]Processor
	circuitBreakers map[string]*gobreaker.CircuitBreaker[*ChargeResult]
}

func NewFactory(processorList ...Processor) *Factory {
	f := &Factory{
		processors:      make(map[string]Processor),
		circuitBreakers: make(map[string]*gobreaker.CircuitBreaker[*ChargeResult]),
	}

	if len(processorList) == 0 {
		f.Register(NewMockProcessor("stripe",
			WithLatency(200*time.Millisecond),
			WithFailureRate(0.05),
		))
	} else {
		for _, p := range processorList {
			f.Register(p)
		}
	}

	return f
}

func (f *Factory) Register(p Processor) {
	f.processors[p.Name()] = p
	f.circuitBreakers[p.Name()] = gobreaker.NewCircuitBreaker[*ChargeResult](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
}

func (f *Factory) Get(name string) (Processor, *gobreaker.CircuitBreaker[*ChargeResult], error) {
	p, ok := f.processors[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown processor %q: %w", name, domainErrors.ErrProcessorUnavailable)
	}
	return p, f.circuitBreakers[name], nil
}
