package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's Prometheus instruments. Register once per
// process; tests pass a fresh registry.
type Metrics struct {
	MessagesTotal     *prometheus.CounterVec
	BlockedTotal      *prometheus.CounterVec
	HandoversTotal    prometheus.Counter
	BookingsTotal     prometheus.Counter
	GenerationLatency prometheus.Histogram
	TurnDuration      prometheus.Histogram
}

// NewMetrics creates and registers the engine instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beautyd",
			Name:      "messages_total",
			Help:      "Inbound messages by pipeline outcome.",
		}, []string{"outcome"}),
		BlockedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beautyd",
			Name:      "blocked_total",
			Help:      "Messages blocked by the compliance filter, by layer.",
		}, []string{"layer"}),
		HandoversTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beautyd",
			Name:      "handovers_total",
			Help:      "Conversations escalated to a human attendant.",
		}),
		BookingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beautyd",
			Name:      "bookings_total",
			Help:      "Appointments committed by the scheduling flow.",
		}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beautyd",
			Name:      "generation_latency_seconds",
			Help:      "Latency of generation service calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beautyd",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end duration of one merged turn.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Pipeline outcome labels.
const (
	outcomeReplied   = "replied"
	outcomeDuplicate = "duplicate"
	outcomeBuffered  = "buffered"
	outcomeCommand   = "command"
	outcomeBlocked   = "blocked"
	outcomePaused    = "paused"
)
