package gateway

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Gateway's Prometheus collectors. Each Gateway owns
// its own registry rather than using the global default, so tests can
// build a Gateway without colliding on repeated registration.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travelagent_gateway_requests_total",
		Help: "Total HTTP requests handled by the SSE Gateway, by route and status.",
	}, []string{"route", "method", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelagent_gateway_request_duration_seconds",
		Help:    "HTTP request duration in seconds, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	reg.MustRegister(requestsTotal, requestDuration)

	return &metrics{registry: reg, requestsTotal: requestsTotal, requestDuration: requestDuration}
}

// middleware times every request and records it against the route
// pattern (not the raw path, so /api/session/:id doesn't explode
// cardinality per session id).
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}

		m.requestsTotal.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, c.Request().Method).Observe(time.Since(started).Seconds())

		return err
	}
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
