package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// Metrics provides observability for the registration flow.
// Tracks field validation failures, registration outcomes and store latency.
type Metrics struct {
	ValidationFailures *prometheus.CounterVec
	Registrations      *prometheus.CounterVec
	StoreDuration      *prometheus.HistogramVec
}

// New creates a Metrics instance registered on reg. main passes
// prometheus.DefaultRegisterer; tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_validation_failures_total",
			Help: "Field validation failures by field and error code",
		}, []string{"field", "code"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_submissions_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registration_store_duration_seconds",
			Help:    "Duration of user store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}
}

// IncValidationFailure records one rejected field.
func (m *Metrics) IncValidationFailure(field, code string) {
	m.ValidationFailures.WithLabelValues(field, code).Inc()
}

// IncRegistration records the outcome of a POST /api/users.
func (m *Metrics) IncRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveStore records the duration of a store operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
