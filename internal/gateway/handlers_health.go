package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"travelagent/internal/rpc"
)

func (g *Gateway) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := g.agent.HealthCheck(ctx, &rpc.HealthRequest{})
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "alive": resp.Alive, "version": resp.Version, "status": resp.Status})
}

func (g *Gateway) handleReady(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := g.agent.HealthCheck(ctx, &rpc.HealthRequest{}); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ready": false})
	}
	return c.JSON(http.StatusOK, map[string]any{"ready": true})
}

func (g *Gateway) handleLive(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"live": true})
}
