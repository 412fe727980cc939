package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelagent/internal/cancel"
	"travelagent/internal/dispatch"
	"travelagent/internal/llm"
	"travelagent/internal/modelmanager"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
)

// Version is reported by HealthCheck.
const Version = "0.1.0"

// Server implements AgentServer over the Mode Dispatcher and Model
// Manager. It is deliberately stateless with respect to session
// message history: per spec, the SSE Gateway owns the Session Store
// and is responsible for appending both the user turn and the final
// assistant message around each call into this service.
type Server struct {
	registry *registry.Registry
	models   *modelmanager.Manager
	cancels  *cancel.Manager
	maxSteps int
	logger   *logrus.Logger
}

// New builds the Agent Service's RPC surface.
func New(reg *registry.Registry, models *modelmanager.Manager, cancels *cancel.Manager, maxSteps int, logger *logrus.Logger) *Server {
	return &Server{registry: reg, models: models, cancels: cancels, maxSteps: maxSteps, logger: logger}
}

func (s *Server) dispatcherFor(modelID string) (*dispatch.Dispatcher, error) {
	cfg, err := s.models.Resolve(modelID)
	if err != nil {
		return nil, err
	}
	model, err := llm.NewModel(cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("build model %q: %w", cfg.ModelID, err)
	}
	wrapped := llm.NewCleaningWrapper(model, s.logger)
	capability := llm.NewCapability(wrapped, s.logger)
	return dispatch.New(s.registry, capability, s.maxSteps, s.logger), nil
}

// ProcessMessage invokes the Mode Dispatcher and builds the unary
// response from the strategy's Result. Streamed events are not
// buffered: the callback passed to the dispatcher discards them.
func (s *Server) ProcessMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	if req.UserInput == "" {
		return &MessageResponse{Success: false, Error: "user_input must not be empty"}, nil
	}

	requestID := uuid.NewString()
	runCtx, stop := context.WithCancel(ctx)
	release := s.cancels.Track(requestID, stop)
	defer release()

	dispatcher, err := s.dispatcherFor(req.ModelID)
	if err != nil {
		return &MessageResponse{Success: false, Error: err.Error()}, nil
	}

	result, err := dispatcher.Dispatch(runCtx, dispatch.Turn{SessionID: req.SessionID, UserInput: req.UserInput}, func(stream.Chunk) {})
	if err != nil {
		return &MessageResponse{Success: false, Error: err.Error()}, nil
	}

	return &MessageResponse{
		Success: result.Success,
		Answer:  result.Answer,
		Error:   result.Error,
		Reasoning: Reasoning{
			Text:       result.Reasoning.Text,
			TotalSteps: result.Reasoning.TotalSteps,
			ToolsUsed:  result.Reasoning.ToolsUsed,
		},
		History: toHistoryWire(result.History),
	}, nil
}

// StreamMessage emits a sequence of StreamChunk frames tagged by
// chunk_type, ending with is_last=true.
func (s *Server) StreamMessage(req *MessageRequest, stream_ StreamMessageServerStream) error {
	if req.UserInput == "" {
		return stream_.Send(&StreamChunk{ChunkType: "error", Content: "user_input must not be empty", IsLast: true})
	}

	requestID := uuid.NewString()
	runCtx, stop := context.WithCancel(stream_.Context())
	release := s.cancels.Track(requestID, stop)
	defer release()

	dispatcher, err := s.dispatcherFor(req.ModelID)
	if err != nil {
		_ = stream_.Send(&StreamChunk{ChunkType: "error", Content: err.Error()})
		return stream_.Send(&StreamChunk{ChunkType: "done", IsLast: true})
	}

	sentLast := false
	_, dispatchErr := dispatcher.Dispatch(runCtx, dispatch.Turn{SessionID: req.SessionID, UserInput: req.UserInput}, func(c stream.Chunk) {
		switch c.Type {
		case stream.ChunkReasoningStart:
			_ = stream_.Send(&StreamChunk{ChunkType: "thinking_start"})
		case stream.ChunkReasoningChunk:
			_ = stream_.Send(&StreamChunk{ChunkType: "thinking_chunk", Content: c.Text})
		case stream.ChunkReasoningEnd:
			_ = stream_.Send(&StreamChunk{ChunkType: "thinking_end"})
		case stream.ChunkAnswerStart:
			_ = stream_.Send(&StreamChunk{ChunkType: "answer_start"})
		case stream.ChunkAnswerChunk:
			_ = stream_.Send(&StreamChunk{ChunkType: "answer", Content: c.Text})
		case stream.ChunkError:
			_ = stream_.Send(&StreamChunk{ChunkType: "error", Content: c.Message})
		case stream.ChunkDone:
			sentLast = true
			_ = stream_.Send(&StreamChunk{ChunkType: "done", IsLast: true})
		}
	})

	if !sentLast {
		_ = stream_.Send(&StreamChunk{ChunkType: "done", IsLast: true})
	}
	return dispatchErr
}

// HealthCheck returns liveness, version, and a short status word.
func (s *Server) HealthCheck(ctx context.Context, req *HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{Alive: true, Version: Version, Status: "ok"}, nil
}

func toHistoryWire(steps []react.HistoryStep) []HistoryStepWire {
	out := make([]HistoryStepWire, 0, len(steps))
	for _, step := range steps {
		var decision []string
		if step.Thought.Decision != nil {
			for _, ps := range step.Thought.Decision.Steps {
				decision = append(decision, ps.Tool)
			}
		}
		out = append(out, HistoryStepWire{
			Step:  step.StepIndex,
			Phase: string(step.Phase),
			Thought: ThoughtWire{
				ID:         step.Thought.ID,
				Type:       string(step.Thought.Type),
				Phase:      string(step.Thought.Phase),
				Content:    step.Thought.Content,
				Confidence: step.Thought.Confidence,
				Decision:   decision,
			},
			Action: ActionWire{
				ID:       step.Action.ID,
				ToolName: step.Action.ToolName,
				Status:   string(step.Action.Status),
				Duration: step.Action.Duration().String(),
				Result:   step.Action.Result,
				Error:    step.Action.Error,
			},
			Evaluation: EvaluationWire{
				Success:   step.Evaluation.Success,
				Duration:  step.Evaluation.Duration.String(),
				HasResult: step.Evaluation.HasResult,
			},
			Timestamp: step.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
