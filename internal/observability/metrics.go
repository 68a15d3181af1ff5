package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	managerRequestsTotal  *prometheus.CounterVec
	managerLatencySeconds *prometheus.HistogramVec
	managerErrorsTotal    *prometheus.CounterVec
	importRowsTotal       *prometheus.CounterVec
	eventsPublishedTotal  *prometheus.CounterVec
	feedClientsActive     prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used for manager observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		managerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manager_requests_total",
			Help: "Total number of manager API requests served.",
		}, []string{"method", "route", "status"})

		managerLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "manager_latency_seconds",
			Help:    "Latency distribution for manager API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		managerErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manager_errors_total",
			Help: "Total number of error responses returned by manager endpoints.",
		}, []string{"method", "route", "status"})

		importRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Spreadsheet import rows by source and outcome.",
		}, []string{"source", "outcome"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_events_published_total",
			Help: "Plan lifecycle events published to the activity feed.",
		}, []string{"type"})

		feedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_clients_active",
			Help: "Currently connected activity feed websocket clients.",
		})

		prometheus.MustRegister(
			managerRequestsTotal,
			managerLatencySeconds,
			managerErrorsTotal,
			importRowsTotal,
			eventsPublishedTotal,
			feedClientsActive,
		)
	})
}

// ManagerRequests exposes the counter for manager requests.
func ManagerRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return managerRequestsTotal
}

// ManagerLatency exposes the latency histogram for manager requests.
func ManagerLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return managerLatencySeconds
}

// ManagerErrors exposes the counter for manager error responses.
func ManagerErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return managerErrorsTotal
}

// ImportRows exposes the counter for processed import rows.
func ImportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return importRowsTotal
}

// EventsPublished exposes the counter for plan lifecycle events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// FeedClientsActive exposes the gauge of connected feed clients.
func FeedClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return feedClientsActive
}
