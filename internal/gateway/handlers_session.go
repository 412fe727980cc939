package gateway

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"travelagent/internal/session"
)

type sessionNewRequest struct {
	Name    string `json:"name"`
	ModelID string `json:"model_id"`
}

type sessionView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModelID      string `json:"model_id"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	LastActive   string `json:"last_active"`
}

func toSessionView(s *session.Session) sessionView {
	return sessionView{
		ID:           s.ID,
		Name:         s.DisplayName,
		ModelID:      s.ModelID,
		MessageCount: s.MessageCount,
		CreatedAt:    s.CreatedAt.Format(timeLayout),
		LastActive:   s.LastActive.Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (g *Gateway) handleSessionNew(c echo.Context) error {
	var req sessionNewRequest
	_ = c.Bind(&req)

	modelID := req.ModelID
	if modelID == "" {
		if active, ok := g.models.Active(); ok {
			modelID = active.ModelID
		}
	}

	sess := g.sessions.Create("", req.Name, modelID)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "session": toSessionView(sess)})
}

func (g *Gateway) handleSessionList(c echo.Context) error {
	includeEmpty := c.QueryParam("include_empty") == "true"
	sessions := g.sessions.List(includeEmpty)

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toSessionView(s))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "sessions": views})
}

func (g *Gateway) handleSessionDelete(c echo.Context) error {
	id := c.Param("id")
	if !g.sessions.Delete(id) {
		return c.JSON(http.StatusNotFound, errorBody("session not found"))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

type renameRequest struct {
	Name string `json:"name"`
}

func (g *Gateway) handleSessionRename(c echo.Context) error {
	id := c.Param("id")
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if err := g.sessions.Rename(id, req.Name); err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

type setModelRequest struct {
	ModelID string `json:"model_id"`
}

func (g *Gateway) handleSessionSetModel(c echo.Context) error {
	id := c.Param("id")
	var req setModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, ok := g.models.Get(req.ModelID); !ok {
		return c.JSON(http.StatusBadRequest, errorBody("unknown model_id"))
	}
	if err := g.sessions.SetModel(id, req.ModelID); err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (g *Gateway) handleSessionGetModel(c echo.Context) error {
	id := c.Param("id")
	sess, ok := g.sessions.Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody("session not found"))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "model_id": sess.ModelID})
}

func (g *Gateway) handleSessionClear(c echo.Context) error {
	id := c.Param("id")
	if err := g.sessions.ClearMessages(id); err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (g *Gateway) handleModelsList(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true, "models": g.models.List()})
}

func (g *Gateway) handleModelGet(c echo.Context) error {
	id := c.Param("id")
	info, ok := g.models.Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody("unknown model_id"))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "model": info})
}
