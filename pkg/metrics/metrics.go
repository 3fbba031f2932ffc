// Package metrics defines the Prometheus metric collectors used by the
// crawler, indexer and scorer, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a crawl session.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	FetchesTotal         *prometheus.CounterVec
	FetchDuration        prometheus.Histogram
	FrontierSize         prometheus.Gauge
	PagesVisited         prometheus.Gauge
	DocsIndexedTotal     prometheus.Counter
	TermsRecordedTotal   prometheus.Counter
	ScoringRowsTotal     prometheus.Counter
	ScoreLatency         prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	SinkWritesTotal      *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Page fetches by outcome (ok, failed).",
			},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Page fetch latency in seconds, excluding the politeness delay.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		FrontierSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_frontier_size",
				Help: "Number of discovered URLs waiting to be fetched.",
			},
		),
		PagesVisited: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_pages_visited",
				Help: "Number of pages fetched successfully in the current session.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_documents_total",
				Help: "Total documents indexed.",
			},
		),
		TermsRecordedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_term_occurrences_total",
				Help: "Total term occurrences recorded in the inverted index.",
			},
		),
		ScoringRowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scorer_rows_total",
				Help: "Total TF-IDF rows produced.",
			},
		),
		ScoreLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scorer_latency_seconds",
				Help:    "TF-IDF scoring latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "score_cache_hits_total",
				Help: "Total number of score cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "score_cache_misses_total",
				Help: "Total number of score cache misses.",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_sink_writes_total",
				Help: "Report writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FetchesTotal,
		m.FetchDuration,
		m.FrontierSize,
		m.PagesVisited,
		m.DocsIndexedTotal,
		m.TermsRecordedTotal,
		m.ScoringRowsTotal,
		m.ScoreLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SinkWritesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
