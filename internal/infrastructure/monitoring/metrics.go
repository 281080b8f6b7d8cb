package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Browser session metrics
	SessionsOpened       prometheus.Counter
	SessionsClosed       prometheus.Counter
	SessionOpenFailures  prometheus.Counter
	SessionCloseFailures prometheus.Counter
	SessionsActive       prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with its own registry, so
// multiple collectors can coexist in tests.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		startTime: time.Now(),
		registry:  registry,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rendergate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rendergate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rendergate_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Fetch metrics
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rendergate_fetches_total",
				Help: "Total number of page fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rendergate_fetch_duration_seconds",
				Help:    "End-to-end page fetch duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45},
			},
		),

		// Browser session metrics
		SessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rendergate_sessions_opened_total",
				Help: "Total number of browser sessions opened",
			},
		),
		SessionsClosed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rendergate_sessions_closed_total",
				Help: "Total number of browser sessions closed",
			},
		),
		SessionOpenFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rendergate_session_open_failures_total",
				Help: "Total number of failed session opens",
			},
		),
		SessionCloseFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rendergate_session_close_failures_total",
				Help: "Total number of failed session closes",
			},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rendergate_sessions_active",
				Help: "Number of browser sessions currently open",
			},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rendergate_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// Handler returns the Prometheus exposition handler for this collector.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordFetch records one completed fetch attempt
func (m *Metrics) RecordFetch(outcome string, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(duration.Seconds())
}

// SessionOpened records a successful session open
func (m *Metrics) SessionOpened() {
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()
}

// SessionOpenFailed records a failed session open
func (m *Metrics) SessionOpenFailed() {
	m.SessionOpenFailures.Inc()
}

// SessionClosed records a session close attempt
func (m *Metrics) SessionClosed(ok bool) {
	m.SessionsClosed.Inc()
	m.SessionsActive.Dec()
	if !ok {
		m.SessionCloseFailures.Inc()
	}
}
