package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHooks records pipeline, cache and HTTP events as Prometheus
// metrics on a private registry.
type MetricsHooks struct {
	registry *prometheus.Registry

	composeTotal    *prometheus.CounterVec
	composeDuration prometheus.Histogram
	difficulty      prometheus.Histogram
	renderTotal     *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	renderBytes     *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetricsHooks creates hooks whose metrics are prefixed with namespace.
// The registry also carries the Go runtime and process collectors.
func NewMetricsHooks(namespace string) *MetricsHooks {
	m := &MetricsHooks{
		registry: prometheus.NewRegistry(),
		composeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "compose_total",
			Help: "Routines composed, by result.",
		}, []string{"result"}),
		composeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "compose_duration_seconds",
			Help:    "Time spent composing a routine.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		difficulty: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "routine_difficulty",
			Help:    "Difficulty scores of composed routines.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "render_total",
			Help: "Routines rendered, by format and result.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Time spent rendering a routine.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"format"}),
		renderBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "render_bytes_total",
			Help: "Bytes of rendered output, by format.",
		}, []string{"format"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_events_total",
			Help: "Cache lookups and writes, by key type and event.",
		}, []string{"key_type", "event"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.composeTotal, m.composeDuration, m.difficulty,
		m.renderTotal, m.renderDuration, m.renderBytes,
		m.cacheEvents,
		m.httpInFlight, m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *MetricsHooks) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsHooks) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *MetricsHooks) OnComposeStart(context.Context, int, int) {}

func (m *MetricsHooks) OnComposeComplete(_ context.Context, difficulty int, d time.Duration, err error) {
	m.composeTotal.WithLabelValues(result(err)).Inc()
	m.composeDuration.Observe(d.Seconds())
	if err == nil {
		m.difficulty.Observe(float64(difficulty))
	}
}

func (m *MetricsHooks) OnRenderStart(context.Context, string) {}

func (m *MetricsHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	m.renderTotal.WithLabelValues(format, result(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	m.renderBytes.WithLabelValues(format).Add(float64(size))
}

func (m *MetricsHooks) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *MetricsHooks) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *MetricsHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (m *MetricsHooks) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *MetricsHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var _ Hooks = (*MetricsHooks)(nil)
