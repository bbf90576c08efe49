// Package metrics exposes Prometheus metrics for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Turn metrics
	InteractionsTotal *prometheus.CounterVec
	TokensStreamed    *prometheus.CounterVec

	// Session store metrics
	SessionsActive prometheus.Gauge

	// Relay session metrics
	RelaySessionsActive  prometheus.Gauge
	RelaySessionsTotal   *prometheus.CounterVec
	RelaySessionDuration prometheus.Histogram
	RelayFramesTotal     *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "voxbridge"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	interactionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Total conversational turns processed",
		},
		[]string{"provider", "intent", "status"},
	)

	tokensStreamed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_streamed_total",
			Help:      "Total tokens delivered over streaming responses",
		},
		[]string{"provider"},
	)

	sessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live sessions in the store",
		},
	)

	relaySessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_sessions_active",
			Help:      "Number of active realtime relay sessions",
		},
	)

	relaySessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_sessions_total",
			Help:      "Total realtime relay sessions",
		},
		[]string{"status"},
	)

	relaySessionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_session_duration_seconds",
			Help:      "Realtime relay session duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	relayFramesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_frames_total",
			Help:      "Total WebSocket frames relayed",
		},
		[]string{"direction"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		interactionsTotal,
		tokensStreamed,
		sessionsActive,
		relaySessionsActive,
		relaySessionsTotal,
		relaySessionDuration,
		relayFramesTotal,
		errorsTotal,
	)

	return &Metrics{
		registry:             registry,
		RequestsTotal:        requestsTotal,
		RequestDuration:      requestDuration,
		InteractionsTotal:    interactionsTotal,
		TokensStreamed:       tokensStreamed,
		SessionsActive:       sessionsActive,
		RelaySessionsActive:  relaySessionsActive,
		RelaySessionsTotal:   relaySessionsTotal,
		RelaySessionDuration: relaySessionDuration,
		RelayFramesTotal:     relayFramesTotal,
		ErrorsTotal:          errorsTotal,
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordInteraction records a processed conversational turn.
func (m *Metrics) RecordInteraction(provider, intent, status string) {
	m.InteractionsTotal.WithLabelValues(provider, intent, status).Inc()
}

// RecordTokens records tokens delivered over a stream.
func (m *Metrics) RecordTokens(provider string, n int) {
	if n > 0 {
		m.TokensStreamed.WithLabelValues(provider).Add(float64(n))
	}
}

// SetSessions sets the session store gauge.
func (m *Metrics) SetSessions(n int) {
	m.SessionsActive.Set(float64(n))
}

// RecordRelayStart records a relay session starting.
func (m *Metrics) RecordRelayStart() {
	m.RelaySessionsActive.Inc()
}

// RecordRelayEnd records a relay session ending.
func (m *Metrics) RecordRelayEnd(status string, duration time.Duration) {
	m.RelaySessionsActive.Dec()
	m.RelaySessionsTotal.WithLabelValues(status).Inc()
	m.RelaySessionDuration.Observe(duration.Seconds())
}

// RecordRelayFrame records one relayed WebSocket frame.
func (m *Metrics) RecordRelayFrame(direction string) {
	m.RelayFramesTotal.WithLabelValues(direction).Inc()
}

// RecordError records an error by component and taxonomy type.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
