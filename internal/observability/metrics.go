package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts vote writes by kind and outcome ("ok" or "rolled_back").
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_votes_total",
		Help: "Total number of template votes by kind and outcome",
	}, []string{"kind", "outcome"})

	// WorkoutLogsTotal counts saved workout log entries by tracking type.
	WorkoutLogsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_workout_logs_total",
		Help: "Total number of workout log entries saved",
	}, []string{"tracking_type"})

	// AuthEventsTotal counts sign-up, sign-in and sign-out events.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_auth_events_total",
		Help: "Total number of authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// ActiveVisitors is the number of visitor states held in memory.
	ActiveVisitors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liftlog_active_visitors",
		Help: "Number of visitor states currently held in memory",
	})

	// SessionSockets is the number of open session websocket connections.
	SessionSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liftlog_session_sockets",
		Help: "Number of open session websocket connections",
	})

	// StoreQueryLatency records data access latency by operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liftlog_store_query_latency_seconds",
		Help:    "Data store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})
)

// TrackQuery returns a func that records the elapsed time when called (e.g. defer).
func TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	}
}
