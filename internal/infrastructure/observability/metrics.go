package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Checkout metrics
	CheckoutsTotal    *prometheus.CounterVec
	CheckoutDuration  *prometheus.HistogramVec
	FinalizeReplays   prometheus.Counter
	AgreementFailures prometheus.Counter

	// Guest count metrics
	GuestCountWrites *prometheus.CounterVec
	GuestCountLocks  *prometheus.CounterVec

	// Installment metrics
	InstallmentCharges *prometheus.CounterVec
	InstallmentRetries prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		CheckoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_total",
				Help:      "Total number of finalized checkouts by flow and strategy",
			},
			[]string{"flow", "strategy"},
		),
		CheckoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "checkout_duration_seconds",
				Help:      "Finalize sequence duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"flow"},
		),
		FinalizeReplays: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "finalize_replays_total",
				Help:      "Duplicate finalize invocations ignored by the reentry guard",
			},
		),
		AgreementFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agreement_failures_total",
				Help:      "Best-effort agreement document failures",
			},
		),
		GuestCountWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guest_count_writes_total",
				Help:      "Guest count write attempts by outcome",
			},
			[]string{"outcome"},
		),
		GuestCountLocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guest_count_locks_total",
				Help:      "Guest count locks by flow reason",
			},
			[]string{"reason"},
		),
		InstallmentCharges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installment_charges_total",
				Help:      "Automatic installment charges by status",
			},
			[]string{"status"},
		),
		InstallmentRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installment_retries_total",
				Help:      "Installment charge retries",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"processor"},
		),
	}

	reg.MustRegister(
		m.CheckoutsTotal,
		m.CheckoutDuration,
		m.FinalizeReplays,
		m.AgreementFailures,
		m.GuestCountWrites,
		m.GuestCountLocks,
		m.InstallmentCharges,
		m.InstallmentRetries,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CircuitBreakerState,
	)

	return m
}
