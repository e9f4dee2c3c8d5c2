// Package metrics holds the Prometheus collectors for navigation and store traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors on one registry.
type Metrics struct {
	registry      *prometheus.Registry
	navigations   *prometheus.CounterVec
	storeCalls    *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "navigations_total",
			Help:      "Router navigations by target route and outcome.",
		}, []string{"route", "outcome"}),
		storeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "store_calls_total",
			Help:      "Bill store calls by operation and result.",
		}, []string{"operation", "result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billed",
			Name:      "store_call_duration_seconds",
			Help:      "Bill store call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.navigations,
		m.storeCalls,
		m.storeDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveNavigation counts one router navigation. Outcome is "ok", "not_found" or "error".
func (m *Metrics) ObserveNavigation(route, outcome string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(route, outcome).Inc()
}

func (m *Metrics) observeStore(operation string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeCalls.WithLabelValues(operation, result).Inc()
	m.storeDuration.WithLabelValues(operation).Observe(seconds)
}
