package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Transaction submission
	// ============================================
	SubmissionAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_submission_send_attempts_total",
		Help: "Total number of raw transaction send attempts",
	})

	SubmissionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_submission_results_total",
			Help: "Terminal submission outcomes",
		},
		[]string{"result"}, // succeeded, on_chain_error, retries_exhausted, canceled
	)

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_submission_duration_seconds",
		Help:    "Time from first send to terminal result",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	// ============================================
	// Custodial signer
	// ============================================
	SignRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sign_requests_total",
			Help: "Remote sign calls by outcome",
		},
		[]string{"outcome"},
	)

	// ============================================
	// Event feed
	// ============================================
	FeedConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_feed_connection_status",
		Help: "Event feed connection status (1=connected, 0=disconnected)",
	})

	FeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_feed_reconnects_total",
		Help: "Total number of event feed reconnect attempts",
	})

	FeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_feed_events_total",
			Help: "Events received from the feed",
		},
		[]string{"event_type"},
	)
)
