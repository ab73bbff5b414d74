package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_events_received_total",
			Help: "Total number of queue messages received (count)",
		},
		[]string{"kind"},
	)

	EventsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_events_processed_total",
			Help: "Total number of queue messages processed, by outcome (count)",
		},
		[]string{"outcome", "reason"},
	)

	ProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subscriber_processing_duration_ms",
			Help:    "Per-message processing duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"outcome"},
	)

	QueueFetchErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriber_queue_fetch_errors_total",
			Help: "Total number of failed batch receives from the queue (count)",
		},
	)

	LedgerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_requests_total",
			Help: "Total number of ledger transaction lookups (count)",
		},
		[]string{"status"},
	)

	LedgerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_cache_total",
			Help: "Ledger transaction cache lookups, hit or miss (count)",
		},
		[]string{"result"},
	)

	NotificationSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sends_total",
			Help: "Total number of email send attempts, by status (count)",
		},
		[]string{"status"},
	)

	NotificationSendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_send_duration_ms",
			Help:    "Email send call duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

var registerOnce sync.Once

func RegisterSubscriberMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EventsReceivedTotal,
			EventsProcessedTotal,
			ProcessingDuration,
			QueueFetchErrorsTotal,
			LedgerRequestsTotal,
			LedgerCacheTotal,
			NotificationSendsTotal,
			NotificationSendDuration,
		)
	})
}

var registerCBOnce sync.Once

func RegisterCircuitBreakerMetrics() {
	registerCBOnce.Do(func() {
		prometheus.MustRegister(
			CircuitBreakerState,
			CircuitBreakerFailures,
		)
	})
}

func ObserveProcessingDuration(duration time.Duration, outcome string) {
	ProcessingDuration.WithLabelValues(outcome).Observe(float64(duration.Milliseconds()))
}

func ObserveNotificationSendDuration(duration time.Duration) {
	NotificationSendDuration.Observe(float64(duration.Milliseconds()))
}
