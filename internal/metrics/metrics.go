// Package metrics defines the Prometheus collectors of the discovery API.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricCatalogLoadDuration  = "discovery_catalog_load_duration_seconds"
	MetricCatalogLoadFailures  = "discovery_catalog_load_failures_total"
	MetricAggregationFailures  = "discovery_review_aggregation_failures_total"
	MetricFacetQueryFailures   = "discovery_facet_query_failures_total"
	MetricFallbackRequests     = "discovery_fallback_requests_total"
	MetricResultCacheLookups   = "discovery_result_cache_lookups_total"
	MetricActiveSearchSessions = "discovery_active_search_sessions"
	MetricDocumentsSkipped     = "discovery_documents_skipped_total"
	MetricHTTPRequestDuration  = "http_request_duration_seconds"
	MetricHTTPRequestsTotal    = "http_requests_total"
)

// Fallback request outcomes.
const (
	FallbackCommitted = "committed"
	FallbackStale     = "stale"
	FallbackFailed    = "failed"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics contains the collectors. All operations are safe for concurrent use.
type Metrics struct {
	catalogLoadDuration prometheus.Histogram
	catalogLoadFailures prometheus.Counter
	aggregationFailures prometheus.Counter
	facetQueryFailures  prometheus.Counter
	fallbackRequests    *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	activeSessions      prometheus.Gauge
	documentsSkipped    *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		catalogLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricCatalogLoadDuration,
			Help:    "Time to load the catalog and aggregate its reviews",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		catalogLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCatalogLoadFailures,
			Help: "Catalog fetches that failed",
		}),
		aggregationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricAggregationFailures,
			Help: "Per-restaurant or per-dish review fetches that failed and were degraded to zero reviews",
		}),
		facetQueryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricFacetQueryFailures,
			Help: "Tag facet lookups that failed and were degraded to an empty match set",
		}),
		fallbackRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFallbackRequests,
			Help: "External places requests by outcome",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricResultCacheLookups,
			Help: "Result cache lookups by result",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricActiveSearchSessions,
			Help: "Open search sessions",
		}),
		documentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricDocumentsSkipped,
			Help: "Stored documents skipped because they could not be decoded",
		}, []string{"collection"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.0},
		}, []string{"method", "path", "status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.catalogLoadDuration,
		m.catalogLoadFailures,
		m.aggregationFailures,
		m.facetQueryFailures,
		m.fallbackRequests,
		m.cacheLookups,
		m.activeSessions,
		m.documentsSkipped,
		m.httpRequestDuration,
		m.httpRequestsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveCatalogLoad records a catalog load.
func (m *Metrics) ObserveCatalogLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.catalogLoadDuration.Observe(d.Seconds())
	if err != nil {
		m.catalogLoadFailures.Inc()
	}
}

// IncAggregationFailures counts a degraded review fetch.
func (m *Metrics) IncAggregationFailures() {
	if m == nil {
		return
	}
	m.aggregationFailures.Inc()
}

// IncFacetQueryFailures counts a degraded tag facet lookup.
func (m *Metrics) IncFacetQueryFailures() {
	if m == nil {
		return
	}
	m.facetQueryFailures.Inc()
}

// IncFallbackRequests counts an external request by outcome.
func (m *Metrics) IncFallbackRequests(outcome string) {
	if m == nil {
		return
	}
	m.fallbackRequests.WithLabelValues(outcome).Inc()
}

// IncCacheLookups counts a result cache lookup.
func (m *Metrics) IncCacheLookups(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SessionOpened increments the open session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the open session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// IncDocumentsSkipped counts a stored document that could not be decoded.
func (m *Metrics) IncDocumentsSkipped(collection string) {
	if m == nil {
		return
	}
	m.documentsSkipped.WithLabelValues(collection).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}
