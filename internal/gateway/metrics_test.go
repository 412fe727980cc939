package gateway

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	m := newMetrics()
	e := echo.New()
	e.Use(m.middleware)
	e.GET("/api/live", func(c echo.Context) error { return c.NoContent(200) })

	req := httptest.NewRequest("GET", "/api/live", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	families, err := m.registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "travelagent_gateway_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			if metric.GetCounter().GetValue() == 1 {
				found = true
			}
		}
	}
	assert.True(t, found, "expected one recorded request in %s", "travelagent_gateway_requests_total")
}

func TestMetricsHandlerServesPrometheusFormat(t *testing.T) {
	m := newMetrics()
	m.requestsTotal.WithLabelValues("/api/live", "GET", "200").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)

	require.NoError(t, m.handler()(c))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "travelagent_gateway_requests_total")
}
