// Package prometheus wires the chem-pipeline metric set into a dedicated
// Prometheus registry and exposes the /metrics handler.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
)

// Metrics holds every application metric, registered on its own registry so
// tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline layer
	MoleculesParsedTotal    *prometheus.CounterVec
	FingerprintsTotal       *prometheus.CounterVec
	ClusteringRunsTotal     *prometheus.CounterVec
	ClusteringDuration      prometheus.Histogram
	SimilaritySearchesTotal prometheus.Counter
	DescriptorRunsTotal     prometheus.Counter

	// Cache layer
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Persistence layer
	DBQueryDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the full metric set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chemsar",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   DefaultHTTPDurationBuckets,
	}, []string{"method", "path"})

	m.MoleculesParsedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "molecules_parsed_total",
		Help:      "Structures parsed from input, by outcome.",
	}, []string{"status"})

	m.FingerprintsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "fingerprints_computed_total",
		Help:      "Fingerprints computed, by type.",
	}, []string{"type"})

	m.ClusteringRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "clustering_runs_total",
		Help:      "Clustering runs, by outcome.",
	}, []string{"status"})

	m.ClusteringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chemsar",
		Name:      "clustering_duration_seconds",
		Help:      "End-to-end clustering pipeline duration.",
		Buckets:   DefaultPipelineDurationBuckets,
	})

	m.SimilaritySearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "similarity_searches_total",
		Help:      "Similarity searches served.",
	})

	m.DescriptorRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "descriptor_runs_total",
		Help:      "Descriptor computation runs.",
	})

	m.CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "fingerprint_cache_hits_total",
		Help:      "Fingerprint cache hits.",
	})

	m.CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chemsar",
		Name:      "fingerprint_cache_misses_total",
		Help:      "Fingerprint cache misses.",
	})

	m.DBQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chemsar",
		Name:      "db_query_duration_seconds",
		Help:      "Database query duration.",
		Buckets:   DefaultHTTPDurationBuckets,
	}, []string{"operation"})

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MoleculesParsedTotal,
		m.FingerprintsTotal,
		m.ClusteringRunsTotal,
		m.ClusteringDuration,
		m.SimilaritySearchesTotal,
		m.DescriptorRunsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBQueryDuration,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
