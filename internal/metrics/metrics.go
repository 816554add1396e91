package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onthisday"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	upstreamTotal   *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	skippedRecords  *prometheus.CounterVec
	dayFailures     prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.upstreamTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Day fetches against the history API by outcome",
	}, []string{"outcome"})
	m.upstreamLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of day fetches including retries",
		Buckets:   prometheus.DefBuckets,
	})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result",
	}, []string{"cache", "result"})
	m.skippedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_records_total",
		Help:      "Upstream records dropped during parsing",
	}, []string{"category"})
	m.dayFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "range_day_failures_total",
		Help:      "Days that failed inside multi-day queries",
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	m.registry.MustRegister(
		m.upstreamTotal,
		m.upstreamLatency,
		m.cacheLookups,
		m.skippedRecords,
		m.dayFailures,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveUpstream records one day fetch.
func (m *Metrics) ObserveUpstream(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamTotal.WithLabelValues(outcome).Inc()
	m.upstreamLatency.Observe(d.Seconds())
}

// CacheLookup records a hit or miss on the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// SkippedRecord counts a dropped upstream record.
func (m *Metrics) SkippedRecord(category string) {
	if m == nil {
		return
	}
	m.skippedRecords.WithLabelValues(category).Inc()
}

// DayFailure counts a failed day inside a multi-day query.
func (m *Metrics) DayFailure() {
	if m == nil {
		return
	}
	m.dayFailures.Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
