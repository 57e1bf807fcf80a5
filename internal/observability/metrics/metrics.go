package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the Prometheus instrumentation for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	conversionEvents *prometheus.CounterVec
	coinMovements    *prometheus.CounterVec
}

// New builds the metric set on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		conversionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "affiliate_conversion_events_total",
			Help: "Conversion lifecycle events processed, by event kind.",
		}, []string{"event"}),
		coinMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "affiliate_coin_movements_total",
			Help: "Coin movements recorded, by movement type.",
		}, []string{"type"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.conversionEvents,
		m.coinMovements,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveConversionEvent counts a processed conversion lifecycle event.
func (m *Metrics) ObserveConversionEvent(event string) {
	m.conversionEvents.WithLabelValues(event).Inc()
}

// ObserveCoinMovement counts a recorded coin movement.
func (m *Metrics) ObserveCoinMovement(movementType string) {
	m.coinMovements.WithLabelValues(movementType).Inc()
}
