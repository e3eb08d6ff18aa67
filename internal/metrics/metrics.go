// Package metrics exposes Prometheus collectors for the chat, parsing and
// checkout simulations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roomie"

// Metrics bundles the collectors registered by the service. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ChatReplies      *prometheus.CounterVec
	ChatFollowUps    prometheus.Counter
	Extractions      *prometheus.CounterVec
	SimulatedLatency *prometheus.HistogramVec
	SixerOutcomes    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by matched category (\"default\" when nothing matched).",
		}, []string{"category"}),
		ChatFollowUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_follow_ups_total",
			Help:      "Chat replies that had a follow-up question appended.",
		}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_extractions_total",
			Help:      "Listing extraction attempts by outcome.",
		}, []string{"outcome"}),
		SimulatedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulated_latency_seconds",
			Help:      "Artificial delays applied before responding.",
			Buckets:   []float64{0.25, 0.5, 1, 1.5, 2, 2.5, 3, 5},
		}, []string{"operation"}),
		SixerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sixer_checkouts_total",
			Help:      "Simulated Sixer checkouts by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ChatReplies,
		m.ChatFollowUps,
		m.Extractions,
		m.SimulatedLatency,
		m.SixerOutcomes,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveChatReply(category string, followUp bool) {
	if m == nil {
		return
	}
	if category == "" {
		category = "default"
	}
	m.ChatReplies.WithLabelValues(category).Inc()
	if followUp {
		m.ChatFollowUps.Inc()
	}
}

func (m *Metrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDelay(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.SimulatedLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) ObserveSixer(outcome string) {
	if m == nil {
		return
	}
	m.SixerOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(latency.Seconds())
}
