// Package metrics expone métricas Prometheus de las llamadas al servicio de catálogo.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implementa catalog.Recorder y registra contadores por operación.
type Collector struct {
	calls      *prometheus.CounterVec
	httpStatus *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	cacheSize  prometheus.Gauge
}

// NewCollector crea el Collector y registra sus métricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_sync_catalog_calls_total",
			Help: "Llamadas al servicio de catálogo por operación y resultado",
		}, []string{"op", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_sync_catalog_http_status_total",
			Help: "Respuestas del servicio de catálogo por código HTTP",
		}, []string{"status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_sync_catalog_latency_seconds",
			Help:    "Latencia de las llamadas al servicio de catálogo (segundos)",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventario_sync_inventory_cache_records",
			Help: "Registros de inventario en el caché de la bodega activa",
		}),
	}
	reg.MustRegister(c.calls, c.httpStatus, c.latency, c.cacheSize)
	return c
}

// ObserveCall registra una llamada. status == 0 si no hubo respuesta HTTP.
func (c *Collector) ObserveCall(op, outcome string, status int, elapsed time.Duration) {
	c.calls.WithLabelValues(op, outcome).Inc()
	if status > 0 {
		c.httpStatus.WithLabelValues(strconv.Itoa(status)).Inc()
	}
	if elapsed > 0 {
		c.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}

// SetCacheSize publica el tamaño actual del caché de inventario.
func (c *Collector) SetCacheSize(n int) {
	c.cacheSize.Set(float64(n))
}

// Handler handler de scrape para /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
