// Package metrics expone los colectores Prometheus del servicio.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registro propio con métricas HTTP y de mutaciones rechazadas.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rejected        *prometheus.CounterVec
}

// New inicializa el registro y los colectores.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total de peticiones HTTP por método, ruta y estado.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rejected_mutations_total",
		Help: "Mutaciones rechazadas por reglas de dominio, por código.",
	}, []string{"kind"})
	registry.MustRegister(requests, duration, rejected,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return &Metrics{registry: registry, requestsTotal: requests, requestDuration: duration, rejected: rejected}
}

// Middleware registra conteo y duración de cada petición. Usa la ruta
// registrada (/products/:id) y no la URL concreta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Route().Path
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		m.requestsTotal.WithLabelValues(labels...).Inc()
		m.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Rejected incrementa el contador de mutaciones rechazadas para kind (código de error).
func (m *Metrics) Rejected(kind string) {
	if m == nil || kind == "" {
		return
	}
	m.rejected.WithLabelValues(kind).Inc()
}

// Handler endpoint /metrics.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) }
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry registro subyacente (tests y colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
