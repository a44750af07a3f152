// Package metrics exposes Prometheus metrics for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace for all gateway metrics.
const Namespace = "gateway"

// Collector registers and records the gateway's Prometheus metrics on a
// private registry so only gateway metrics appear on the endpoint.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	backendTotal     *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	backendReachable prometheus.Gauge
}

// NewCollector creates a collector with its own registry. A nil registry
// gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Buckets sized for a proxy whose slowest operation is a multi-minute
	// generation run.
	durationBuckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60, 300}

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "Gateway HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "request_duration_seconds",
			Help:      "Gateway HTTP request latency by route.",
			Buckets:   durationBuckets,
		}, []string{"route"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_requests_total",
			Help:      "Backend operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Backend operation latency.",
			Buckets:   durationBuckets,
		}, []string{"operation"}),
		backendReachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "backend_reachable",
			Help:      "Whether the research backend is currently reachable (1) or not (0).",
		}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.backendTotal,
		c.backendDuration,
		c.backendReachable,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveHTTPRequest records one completed gateway request.
func (c *Collector) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	c.requestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveBackendRequest records one backend operation. Outcome is a
// classification like "ok" or "transport_failure", not an HTTP status.
func (c *Collector) ObserveBackendRequest(operation, outcome string, elapsed time.Duration) {
	c.backendTotal.WithLabelValues(operation, outcome).Inc()
	c.backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetBackendReachable reflects the health checker's view of the backend.
func (c *Collector) SetBackendReachable(reachable bool) {
	if reachable {
		c.backendReachable.Set(1)
	} else {
		c.backendReachable.Set(0)
	}
}

func statusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
