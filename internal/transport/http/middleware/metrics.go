package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry, so several engines (or tests) in one process
// do not collide on registration.
type Metrics struct {
	reg     *prometheus.Registry
	total   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Count of HTTP requests"},
			[]string{"path", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
	}
	m.reg.MustRegister(
		m.total, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.total.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
	return gin.WrapH(h)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
