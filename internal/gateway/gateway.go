/*
Package gateway implements the SSE Gateway (C10): the HTTP surface
that bridges the internal Agent Service (gRPC) to external clients
over HTTP/SSE, owning the Session Store and the model registry view
clients see. Grounded in the teacher's core/server.go route/SSE idiom,
generalized from its single-process Echo server to a process that
talks to the Agent Service over gRPC rather than holding an
agents.Executor directly.
*/
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"travelagent/internal/modelmanager"
	"travelagent/internal/rpc"
	"travelagent/internal/session"
)

// Gateway owns the Echo instance and the services the HTTP surface
// delegates to.
type Gateway struct {
	agent          rpc.AgentClient
	sessions       *session.Store
	models         *modelmanager.Manager
	heartbeatEvery time.Duration
	logger         *logrus.Logger
	metrics        *metrics
}

// New builds a Gateway.
func New(agent rpc.AgentClient, sessions *session.Store, models *modelmanager.Manager, heartbeatEvery time.Duration, logger *logrus.Logger) *Gateway {
	return &Gateway{agent: agent, sessions: sessions, models: models, heartbeatEvery: heartbeatEvery, logger: logger, metrics: newMetrics()}
}

// RegisterRoutes wires every HTTP endpoint spec §6 names onto e.
func (g *Gateway) RegisterRoutes(e *echo.Echo, corsOrigins []string) {
	e.Use(echo.WrapMiddleware(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})))
	e.Use(g.metrics.middleware)

	e.GET("/metrics", g.metrics.handler())

	e.POST("/api/chat/stream", g.handleChatStream)

	e.POST("/api/session/new", g.handleSessionNew)
	e.GET("/api/sessions", g.handleSessionList)
	e.DELETE("/api/session/:id", g.handleSessionDelete)
	e.PUT("/api/session/:id/name", g.handleSessionRename)
	e.PUT("/api/session/:id/model", g.handleSessionSetModel)
	e.GET("/api/session/:id/model", g.handleSessionGetModel)
	e.POST("/api/clear/:id", g.handleSessionClear)

	e.GET("/api/models", g.handleModelsList)
	e.GET("/api/models/:id", g.handleModelGet)

	e.GET("/api/health", g.handleHealth)
	e.GET("/api/ready", g.handleReady)
	e.GET("/api/live", g.handleLive)
}

func errorBody(message string) map[string]any {
	return map[string]any{"success": false, "error": message}
}
