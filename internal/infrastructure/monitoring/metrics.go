package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for relayed requests
const (
	OutcomeSuccess       = "success"
	OutcomeRemoteFailure = "remote_failure"
	OutcomeInvalidKind   = "invalid_kind"
	OutcomeTimeout       = "timeout"
	OutcomeError         = "error"
)

// Handshake result labels
const (
	HandshakeSucceeded = "succeeded"
	HandshakeFailed    = "failed"
	HandshakeDiscarded = "discarded"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Relay metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ReadinessWait    prometheus.Histogram
	ReadinessTimeout prometheus.Counter

	// Connection metrics
	Handshakes      *prometheus.CounterVec
	ConnectionReady prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_requests_total",
				Help: "Total number of relayed requests",
			},
			[]string{"kind", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_request_duration_seconds",
				Help:    "Relayed request duration in seconds, readiness wait included",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		ReadinessWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relay_readiness_wait_seconds",
				Help:    "Time callers spent waiting for the channel to become ready",
				Buckets: []float64{0, .1, .5, 1, 2, 5, 10},
			},
		),
		ReadinessTimeout: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "relay_readiness_timeouts_total",
				Help: "Total number of readiness waits that timed out",
			},
		),
		Handshakes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_handshakes_total",
				Help: "Total number of frame handshakes by result",
			},
			[]string{"result"},
		),
		ConnectionReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_connection_ready",
				Help: "1 when a channel to the frame is established",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a relayed request
func (m *Metrics) RecordRequest(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind, outcome).Inc()
	m.RequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordReadinessWait records how long a caller waited for the channel
func (m *Metrics) RecordReadinessWait(waited time.Duration, timedOut bool) {
	if m == nil {
		return
	}
	m.ReadinessWait.Observe(waited.Seconds())
	if timedOut {
		m.ReadinessTimeout.Inc()
	}
}

// RecordHandshake records a handshake result
func (m *Metrics) RecordHandshake(result string) {
	if m == nil {
		return
	}
	m.Handshakes.WithLabelValues(result).Inc()
}

// SetConnectionReady flips the connection gauge
func (m *Metrics) SetConnectionReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.ConnectionReady.Set(1)
	} else {
		m.ConnectionReady.Set(0)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
