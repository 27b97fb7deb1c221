package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// ResolverMetrics records price resolution outcomes and latency.
type ResolverMetrics struct {
	duration   *prometheus.HistogramVec
	outcomes   *prometheus.CounterVec
	candidates prometheus.Histogram
}

// NewResolverMetrics registers the resolver metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewResolverMetrics(reg prometheus.Registerer) *ResolverMetrics {
	if reg == nil {
		return &ResolverMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_resolution_duration_seconds",
		Help:    "Duration of price resolutions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_resolutions_total",
		Help: "Price resolutions by outcome.",
	}, []string{"outcome"})
	candidates := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_resolution_candidates",
		Help:    "Number of matching price records considered per resolution.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})
	reg.MustRegister(duration, outcomes, candidates)
	return &ResolverMetrics{
		duration:   duration,
		outcomes:   outcomes,
		candidates: candidates,
	}
}

// Observe records one resolution.
func (m *ResolverMetrics) Observe(outcome string, candidates int, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.outcomes.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	if outcome != OutcomeError {
		m.candidates.Observe(float64(candidates))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
