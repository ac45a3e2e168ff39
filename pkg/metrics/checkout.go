package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records payment polling activity.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	ticks    *prometheus.CounterVec
	outcomes *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_poll_duration_seconds",
		Help:    "Time from checkout submission to a terminal payment state.",
		Buckets: []float64{1, 3, 10, 30, 60, 120, 300},
	}, []string{"outcome"})
	ticks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_poll_ticks",
		Help: "Payment status polls issued, by per-tick result.",
	}, []string{"result"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcomes",
		Help: "Completed checkout sessions, by terminal outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, ticks, outcomes)
	return &CheckoutMetrics{
		duration: duration,
		ticks:    ticks,
		outcomes: outcomes,
	}
}

// ObserveDuration records time-to-terminal for the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncTick counts a single poll attempt with its per-tick result.
func (c *CheckoutMetrics) IncTick(result string) {
	if c == nil || c.ticks == nil {
		return
	}
	c.ticks.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncOutcome counts a checkout session reaching a terminal outcome.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
