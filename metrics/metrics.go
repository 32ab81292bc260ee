package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "walletpass"

var messageLabels = []string{"topic", "handler"}

// Router metrics, labeled by topic and handler.
var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "processed_total",
			Help:      "Messages handled by the router, successful or not.",
		},
		messageLabels,
	)

	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "processing_failed_total",
			Help:      "Messages whose handler returned an error.",
		},
		messageLabels,
	)

	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  namespace,
			Subsystem:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "Time spent in message handlers.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		messageLabels,
	)
)

// Pass pipeline metrics.
var (
	// PassesResolved counts attendees whose pass was created or found.
	PassesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "passes",
			Name:      "resolved_total",
			Help:      "Attendees whose pass was created or found.",
		},
	)

	PassCreationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "passes",
			Name:      "creation_failed_total",
			Help:      "Failed pass creations by error kind.",
		},
		[]string{"error_kind"},
	)

	RechecksFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "passes",
			Name:      "rechecks_fired_total",
			Help:      "Delayed re-checks claimed by this instance.",
		},
	)
)
