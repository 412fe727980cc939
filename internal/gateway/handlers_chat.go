package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"travelagent/internal/rpc"
	"travelagent/internal/session"
)

type chatStreamRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type sseEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
	TS      int64  `json:"ts,omitempty"`
	Stats   any    `json:"stats,omitempty"`
}

func (g *Gateway) writeEvent(c echo.Context, ev sseEvent) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(c.Response(), "data: %s\n\n", data)
	c.Response().Flush()
}

// handleChatStream is the core of the SSE Gateway: it translates one
// StreamMessage gRPC call into the typed SSE frames spec §6 lists,
// inserting a heartbeat after heartbeatEvery of silence and appending
// both the user turn and the final assistant message around the
// call, matching the teacher's sendStreamMessage/Flush idiom in
// core/server.go.
func (g *Gateway) handleChatStream(c echo.Context) error {
	var req chatStreamRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return c.JSON(400, errorBody("message is required"))
	}

	requestLogger := g.logger.WithFields(logrus.Fields{
		"endpoint": "/api/chat/stream",
		"clientIP": c.RealIP(),
	})

	sess, ok := g.sessions.Get(req.SessionID)
	if !ok {
		sess = g.sessions.Create(req.SessionID, "", "")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(200)

	g.writeEvent(c, sseEvent{Type: "session_id", Text: sess.ID})

	_ = g.sessions.AppendMessage(sess.ID, session.Message{Role: session.RoleUser, Content: req.Message})

	ctx := c.Request().Context()
	rpcReq := &rpc.MessageRequest{SessionID: sess.ID, UserInput: req.Message, ModelID: sess.ModelID, Stream: true}
	clientStream, err := g.agent.StreamMessage(ctx, rpcReq)
	if err != nil {
		g.writeEvent(c, sseEvent{Type: "error", Message: err.Error()})
		g.writeEvent(c, sseEvent{Type: "done"})
		return nil
	}

	type received struct {
		chunk *rpc.StreamChunk
		err   error
	}
	chunks := make(chan received)
	go func() {
		for {
			chunk, recvErr := clientStream.Recv()
			chunks <- received{chunk: chunk, err: recvErr}
			if recvErr != nil || (chunk != nil && chunk.IsLast) {
				close(chunks)
				return
			}
		}
	}()

	var answer string
	ticker := time.NewTicker(g.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case r, open := <-chunks:
			if !open {
				_ = g.sessions.AppendMessage(sess.ID, session.Message{Role: session.RoleAssistant, Content: answer})
				return nil
			}
			if r.err != nil {
				requestLogger.WithError(r.err).Warn("agent stream ended with error")
				g.writeEvent(c, sseEvent{Type: "error", Message: r.err.Error()})
				g.writeEvent(c, sseEvent{Type: "done"})
				_ = g.sessions.AppendMessage(sess.ID, session.Message{Role: session.RoleAssistant, Content: answer})
				return nil
			}
			ticker.Reset(g.heartbeatEvery)
			answer += translateChunk(c, g, r.chunk)

		case <-ticker.C:
			g.writeEvent(c, sseEvent{Type: "heartbeat", TS: time.Now().Unix()})

		case <-ctx.Done():
			requestLogger.Info("client disconnected, stopping stream translation")
			_ = g.sessions.AppendMessage(sess.ID, session.Message{Role: session.RoleAssistant, Content: answer})
			return nil
		}
	}
}

func translateChunk(c echo.Context, g *Gateway, chunk *rpc.StreamChunk) string {
	switch chunk.ChunkType {
	case "thinking_start":
		g.writeEvent(c, sseEvent{Type: "reasoning_start"})
	case "thinking_chunk":
		g.writeEvent(c, sseEvent{Type: "reasoning_chunk", Text: chunk.Content})
	case "thinking_end":
		g.writeEvent(c, sseEvent{Type: "reasoning_end"})
	case "answer_start":
		g.writeEvent(c, sseEvent{Type: "answer_start"})
	case "answer":
		g.writeEvent(c, sseEvent{Type: "chunk", Text: chunk.Content})
		return chunk.Content
	case "error":
		g.writeEvent(c, sseEvent{Type: "error", Message: chunk.Content})
	case "done":
		g.writeEvent(c, sseEvent{Type: "done"})
	}
	return ""
}
