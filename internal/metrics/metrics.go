package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batepapo_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Presence metrics
	ParticipantsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_participants_joined_total",
			Help: "Total successful joins",
		},
	)

	ParticipantsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_participants_evicted_total",
			Help: "Total participants evicted by the presence sweep",
		},
	)

	EvictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_eviction_failures_total",
			Help: "Total per-participant eviction failures",
		},
		[]string{"stage"}, // "delete" or "announce"
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batepapo_sweep_duration_seconds",
			Help:    "Presence sweep duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Message metrics
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_messages_sent_total",
			Help: "Total messages appended to the history",
		},
		[]string{"type"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "batepapo_live_clients",
			Help: "Connected live feed clients",
		},
	)
)
