// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is a private registry so tests can build isolated collectors.
type Registry struct {
	reg *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	downloads      *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	payoutRequests *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digimarket",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "digimarket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digimarket",
			Name:      "download_attempts_total",
			Help:      "Download attempts by outcome code.",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digimarket",
			Name:      "payment_webhook_events_total",
			Help:      "Payment webhook deliveries by type and result.",
		}, []string{"type", "result"}),
		payoutRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digimarket",
			Name:      "payout_requests_total",
			Help:      "Payout request attempts by outcome.",
		}, []string{"outcome"}),
	}
	r.reg.MustRegister(
		r.httpRequests,
		r.httpLatency,
		r.downloads,
		r.webhookEvents,
		r.payoutRequests,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(method, route string, status int, latency time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// DownloadAttempt counts a download decision ("ok", "EXPIRED", ...).
func (r *Registry) DownloadAttempt(outcome string) {
	if r == nil {
		return
	}
	r.downloads.WithLabelValues(outcome).Inc()
}

// WebhookEvent counts a processed payment webhook.
func (r *Registry) WebhookEvent(eventType, result string) {
	if r == nil {
		return
	}
	r.webhookEvents.WithLabelValues(eventType, result).Inc()
}

// PayoutRequest counts a payout request outcome.
func (r *Registry) PayoutRequest(outcome string) {
	if r == nil {
		return
	}
	r.payoutRequests.WithLabelValues(outcome).Inc()
}
