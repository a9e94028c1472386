// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the platform.
type Metrics struct {
	// Ingestion metrics
	TransactionsIngested prometheus.Counter
	IngestBatchSize      prometheus.Histogram
	IngestErrors         *prometheus.CounterVec
	FeedReconnects       prometheus.Counter
	IngestBufferSize     prometheus.Gauge

	// Engine metrics
	EngineRunsTotal   *prometheus.CounterVec
	EngineRunDuration prometheus.Histogram
	AnomaliesFlagged  prometheus.Counter
	PatternsDetected  prometheus.Gauge
	ForecastsProduced prometheus.Gauge

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulRun       prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on the default registry.
// Call once per process.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "findataops"
	}

	return &Metrics{
		TransactionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_ingested_total",
			Help:      "Total number of transactions written to storage",
		}),
		IngestBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "batch_size",
			Help:      "Number of transactions per ingest batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Ingestion errors by type",
		}, []string{"error_type"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_reconnects_total",
			Help:      "Total number of websocket feed reconnects",
		}),
		IngestBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "buffer_size",
			Help:      "Transactions currently buffered before flush",
		}),
		EngineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Engine runs by status",
		}, []string{"status"}),
		EngineRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full engine run",
			Buckets:   prometheus.DefBuckets,
		}),
		AnomaliesFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "anomalies_flagged_total",
			Help:      "Total anomalies flagged across engine runs",
		}),
		PatternsDetected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "recurring_patterns",
			Help:      "Recurring patterns detected in the latest run",
		}),
		ForecastsProduced: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "forecasts",
			Help:      "Forecast rows produced in the latest run",
		}),
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of the last successful ingest flush",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful engine run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
