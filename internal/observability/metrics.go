// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Query metrics
	StatsRequests   *prometheus.CounterVec
	VehicleRequests *prometheus.CounterVec

	// Reconstruction metrics
	ReconstructionDuration *prometheus.HistogramVec
	CatalogSize            *prometheus.GaugeVec
	AggregationDuration    prometheus.Histogram
	KnownVersions          prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulStats prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "vehicle_catalog"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StatsRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "stats_requests_total",
			Help:      "Total number of stats requests by result",
		}, []string{"result"}),
		VehicleRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "vehicle_requests_total",
			Help:      "Total number of vehicle lookups by result",
		}, []string{"result"}),

		ReconstructionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reconstruction_duration_seconds",
			Help:      "Catalog reconstruction duration in seconds by mode",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		CatalogSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "vehicles",
			Help:      "Number of vehicles in the last reconstructed catalog by stage",
		}, []string{"stage"}),
		AggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "aggregation_duration_seconds",
			Help:      "Stats aggregation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		KnownVersions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "known_versions",
			Help:      "Number of distinct catalog versions seen by the last request",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by cache and outcome",
		}, []string{"cache", "outcome"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulStats: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_stats_timestamp",
			Help:      "Unix timestamp of last successful stats computation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordStatsRequest counts a stats request outcome (ok, invalid, error, cached).
func RecordStatsRequest(result string) {
	DefaultMetrics.StatsRequests.WithLabelValues(result).Inc()
	if result == "ok" || result == "cached" {
		DefaultMetrics.LastSuccessfulStats.Set(float64(time.Now().Unix()))
	}
}

// RecordVehicleRequest counts a vehicle lookup outcome (ok, invalid, not_found, error).
func RecordVehicleRequest(result string) {
	DefaultMetrics.VehicleRequests.WithLabelValues(result).Inc()
}

// RecordReconstruction records reconstruction duration and catalog sizes.
func RecordReconstruction(mode string, seconds float64, reconstructed, filtered int) {
	DefaultMetrics.ReconstructionDuration.WithLabelValues(mode).Observe(seconds)
	DefaultMetrics.CatalogSize.WithLabelValues("reconstructed").Set(float64(reconstructed))
	DefaultMetrics.CatalogSize.WithLabelValues("filtered").Set(float64(filtered))
}

// RecordAggregation records aggregation duration.
func RecordAggregation(seconds float64) {
	DefaultMetrics.AggregationDuration.Observe(seconds)
}

// SetKnownVersions updates the known versions gauge.
func SetKnownVersions(n int) {
	DefaultMetrics.KnownVersions.Set(float64(n))
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	DefaultMetrics.CacheLookups.WithLabelValues(cache, outcome).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// ObserveDBQuery records a query that started at start. Intended for defer.
func ObserveDBQuery(database, operation string, start time.Time, err *error) {
	var qerr error
	if err != nil {
		qerr = *err
	}
	RecordDBQuery(database, operation, time.Since(start).Seconds(), qerr)
}
