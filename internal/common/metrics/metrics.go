package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns by resolved intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_turn_duration_seconds",
			Help:    "Duration of a chat turn in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	IntentCorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intent_corrections_total",
			Help: "Number of times a keyword rule overrode the NLU intent",
		},
		[]string{"rule"},
	)

	NLURequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_requests_total",
			Help: "Calls to the language understanding service",
		},
		[]string{"status"},
	)

	NLURequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlu_request_duration_seconds",
			Help:    "Latency of language understanding calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of order store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_failures_total",
			Help: "Failed order store operations",
		},
		[]string{"operation"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_conversations",
			Help: "Conversations with a partial order in progress",
		},
	)
)
