package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the decade ratings backend

var (
	// Pipeline metrics
	RecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_decade_recomputes_total",
			Help: "Total number of full pipeline recomputes",
		},
		[]string{"status"},
	)

	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_decade_recompute_duration_seconds",
			Help:    "Duration of full pipeline recomputes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	UpdateInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_decade_update_in_progress",
			Help: "1 while a recompute is running, 0 otherwise",
		},
	)

	LastSuccessfulRecompute = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_decade_last_successful_recompute_timestamp",
			Help: "Timestamp of the last successful recompute",
		},
	)

	// Ingestion metrics
	DownloadAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_decade_download_attempts_total",
			Help: "Total number of snapshot download attempts",
		},
	)

	RowsExtracted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_decade_rows_extracted",
			Help: "Number of game rows read from the last snapshot",
		},
	)

	// Store metrics
	StatsRowsWritten = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_decade_stats_rows_written",
			Help: "Number of team-season stat rows written by the last recompute",
		},
	)

	StoreReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_decade_store_reads_total",
			Help: "Total number of metrics store reads",
		},
		[]string{"status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_decade_cache_hits_total",
			Help: "Total number of read cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_decade_cache_misses_total",
			Help: "Total number of read cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_decade_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordRecompute records a completed pipeline run.
func RecordRecompute(status string, duration float64) {
	RecomputesTotal.WithLabelValues(status).Inc()
	RecomputeDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRecompute.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
