package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts HTTP requests.
	// Labels: method, endpoint, status
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, endpoint and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	// requestDuration tracks request latency.
	// Labels: method, endpoint
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by method and endpoint",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"method", "endpoint"},
	)

	// activeRequests tracks in-flight requests.
	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medrag",
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of currently active HTTP requests",
		},
	)
)

// metricsMiddleware records request metrics. Routes are fixed, so the
// route template is safe as a label without cardinality concerns.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			activeRequests.Inc()

			err := next(c)

			activeRequests.Dec()
			method := c.Request().Method
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "/"
			}
			requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Response().Status)).Inc()
			requestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
