package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Assistant turn outcomes.
const (
	TurnSentinel   = "sentinel"
	TurnSearch     = "search"
	TurnModel      = "model"
	TurnModelError = "model_error"
)

// AssistantMetrics records chat turn outcomes and latency.
type AssistantMetrics struct {
	turns    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAssistantMetrics registers the assistant metrics on the provided registerer.
func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	if reg == nil {
		return &AssistantMetrics{}
	}
	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_turns_total",
		Help: "Completed assistant turns by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_turn_duration_seconds",
		Help:    "Duration of assistant turns in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(turns, duration)
	return &AssistantMetrics{
		turns:    turns,
		duration: duration,
	}
}

// ObserveTurn records one completed turn.
func (m *AssistantMetrics) ObserveTurn(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	if m.turns != nil {
		m.turns.WithLabelValues(outcome).Inc()
	}
	if m.duration != nil {
		m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}
