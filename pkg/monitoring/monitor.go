package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 调用 HackAssist 后端的统计
	BackendCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackassist_backend_requests_total",
			Help: "Total number of calls to the HackAssist API",
		},
		[]string{"method", "route", "outcome"},
	)

	BackendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackassist_backend_request_duration_seconds",
			Help:    "Duration of calls to the HackAssist API",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "route"},
	)

	FlowEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackassist_flow_events_total",
			Help: "Flow events published by onboarding, team and chat flows",
		},
		[]string{"topic"},
	)

	ActiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hackassist_active_clients",
			Help: "Number of browser application states held in memory",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(BackendCounter)
	prometheus.MustRegister(BackendDuration)
	prometheus.MustRegister(FlowEvents)
	prometheus.MustRegister(ActiveClients)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// ObserveBackend records one outbound call.
func ObserveBackend(method, route, outcome string, started time.Time) {
	BackendCounter.WithLabelValues(method, route, outcome).Inc()
	BackendDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
