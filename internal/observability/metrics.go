// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RecordsIngested prometheus.Counter
	RecordsStored   prometheus.Counter
	IngestErrors    *prometheus.CounterVec

	// Feed metrics
	FeedRecordsReceived prometheus.Counter
	FeedReconnects      prometheus.Counter
	FeedErrors          *prometheus.CounterVec

	// Analysis metrics
	AnalysesRun         *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	FindingsReported    *prometheus.CounterVec
	TaskPanicsRecovered prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulAnalysis  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "procwatch"
	}

	return &Metrics{
		// Ingestion metrics
		RecordsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_ingested_total",
			Help:      "Total number of records normalized from supplier payloads",
		}),
		RecordsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_stored_total",
			Help:      "Total number of records stored to database",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by type",
		}, []string{"error_type"}),

		// Feed metrics
		FeedRecordsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "records_received_total",
			Help:      "Total number of records received over the supplier feed",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of successful feed reconnections",
		}),
		FeedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "errors_total",
			Help:      "Total number of feed errors by reason",
		}, []string{"reason"}),

		// Analysis metrics
		AnalysesRun: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		FindingsReported: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "findings_reported_total",
			Help:      "Total number of findings reported by kind and type",
		}, []string{"kind", "type"}),
		TaskPanicsRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "task_panics_recovered_total",
			Help:      "Total number of detector or analyzer panics recovered",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful analysis run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFeedRecord increments the feed records received counter.
func RecordFeedRecord() {
	DefaultMetrics.FeedRecordsReceived.Inc()
}

// RecordFeedReconnect increments the feed reconnects counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordFeedError records a feed error by reason.
func RecordFeedError(reason string) {
	DefaultMetrics.FeedErrors.WithLabelValues(reason).Inc()
}

// RecordIngested increments the records ingested counter.
func RecordIngested(n int) {
	DefaultMetrics.RecordsIngested.Add(float64(n))
}

// RecordStored increments the records stored counter.
func RecordStored(n int) {
	DefaultMetrics.RecordsStored.Add(float64(n))
}

// RecordIngestError records an ingestion error by type.
func RecordIngestError(errorType string) {
	DefaultMetrics.IngestErrors.WithLabelValues(errorType).Inc()
}

// RecordAnalysisRun records one analysis run.
func RecordAnalysisRun(status string, durationSeconds float64) {
	DefaultMetrics.AnalysesRun.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordFinding records one reported finding.
func RecordFinding(kind, findingType string) {
	DefaultMetrics.FindingsReported.WithLabelValues(kind, findingType).Inc()
}

// RecordTaskPanic increments the recovered panics counter.
func RecordTaskPanic() {
	DefaultMetrics.TaskPanicsRecovered.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
