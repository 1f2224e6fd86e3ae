package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics collects request-level metrics for the HTTP surface plus the
// unpin backlog depth reported by the collector.
//
// A nil *APIMetrics is valid: every method is a no-op. Constructors return
// nil when the registry is disabled.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	unpinBacklog    prometheus.Gauge
	unpinFailures   prometheus.Counter
}

// NewAPIMetrics creates a Prometheus-backed APIMetrics instance, or nil if
// metrics are disabled.
func NewAPIMetrics() *APIMetrics {
	if !IsEnabled() {
		return nil
	}

	factory := promauto.With(GetRegistry())

	return &APIMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pindex_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pindex_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		unpinBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pindex_unpin_backlog",
			Help: "Number of journaled unpin tasks awaiting retry",
		}),
		unpinFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pindex_unpin_failures_total",
			Help: "Total unpin attempts that failed and were journaled",
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *APIMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SetUnpinBacklog records the current backlog depth.
func (m *APIMetrics) SetUnpinBacklog(n int) {
	if m == nil {
		return
	}
	m.unpinBacklog.Set(float64(n))
}

// IncUnpinFailures counts one journaled unpin failure.
func (m *APIMetrics) IncUnpinFailures() {
	if m == nil {
		return
	}
	m.unpinFailures.Inc()
}
