// Package observability bundles the metrics collector and tracing setup.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every application metric and its private registry, so tests
// can create collectors without fighting over the global default registry.
type Collector struct {
	registry *prometheus.Registry

	navigations       *prometheus.CounterVec
	backNavigations   *prometheus.CounterVec
	unresolvedIntents prometheus.Counter
	suggestionsServed prometheus.Counter
	embeddingDuration prometheus.Histogram
	embeddingFailures prometheus.Counter
	activeSessions    prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "navigations_total",
			Help:      "Navigation attempts by outcome.",
		}, []string{"outcome"}),
		backNavigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "back_navigations_total",
			Help:      "Back navigations by outcome.",
		}, []string{"outcome"}),
		unresolvedIntents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "unresolved_intents_total",
			Help:      "Inputs that resolved to no known destination.",
		}),
		suggestionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "suggestions_served_total",
			Help:      "Proactive suggestions returned to callers.",
		}),
		embeddingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "embedding_duration_seconds",
			Help:      "Time spent producing query embeddings.",
			Buckets:   prometheus.DefBuckets,
		}),
		embeddingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "embedding_failures_total",
			Help:      "Embedding calls that errored or tripped the breaker.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atlas",
			Name:      "active_sessions",
			Help:      "Live user sessions.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		c.navigations,
		c.backNavigations,
		c.unresolvedIntents,
		c.suggestionsServed,
		c.embeddingDuration,
		c.embeddingFailures,
		c.activeSessions,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordNavigation counts one navigation attempt by outcome.
func (c *Collector) RecordNavigation(success bool) {
	c.navigations.WithLabelValues(outcome(success)).Inc()
	if !success {
		c.unresolvedIntents.Inc()
	}
}

// RecordBackNavigation counts one back navigation by outcome.
func (c *Collector) RecordBackNavigation(success bool) {
	c.backNavigations.WithLabelValues(outcome(success)).Inc()
}

// RecordSuggestions counts served suggestions.
func (c *Collector) RecordSuggestions(count int) {
	c.suggestionsServed.Add(float64(count))
}

// ObserveEmbedding records one embedding call.
func (c *Collector) ObserveEmbedding(d time.Duration, err error) {
	c.embeddingDuration.Observe(d.Seconds())
	if err != nil {
		c.embeddingFailures.Inc()
	}
}

// SetActiveSessions reports the current live session count.
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, path, status string, d time.Duration) {
	c.httpRequests.WithLabelValues(method, path, status).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
