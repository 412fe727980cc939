package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelagent/internal/llm"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
)

const planSystemPrompt = `You are a travel-planning assistant. Produce a JSON execution plan ` +
	`for the user's request, using only these tools: search_cities, query_attractions, ` +
	`calculate_budget, get_city_info, datetime, final_answer. Respond with a single JSON ` +
	`object of the exact shape {"goal": "...", "steps": [{"step": 1, "action": "tool_name", ` +
	`"params": {...}, "description": "...", "phase": "PLANNING|EXECUTION|GENERATION"}]}. ` +
	`JSON only, no prose.`

const planAnswerSystemPrompt = `You are a travel assistant. Synthesize the following plan ` +
	`execution results into one direct, friendly final answer; do not mention tools, plans, ` +
	`or steps.`

type planStep struct {
	Step        int               `json:"step"`
	Action      string            `json:"action"`
	Params      map[string]string `json:"params"`
	Description string            `json:"description"`
	Phase       string            `json:"phase"`
}

type plan struct {
	Goal  string     `json:"goal"`
	Steps []planStep `json:"steps"`
}

// planStrategy performs a non-streaming planning call, executes the
// resulting steps sequentially through the registry with no
// additional LLM reasoning between them, then synthesizes an answer.
// It falls back to fallback (ReAct) on plan JSON parse failure.
type planStrategy struct {
	registry   *registry.Registry
	capability llm.Capability
	logger     *logrus.Logger
	fallback   strategy
}

func (s *planStrategy) Run(ctx context.Context, turn Turn, emit stream.Emit) (Result, error) {
	raw, err := s.capability.Complete(ctx, planSystemPrompt, turn.UserInput)
	if err != nil {
		s.logger.WithError(err).Warn("plan generation llm call failed, falling back to react mode")
		return s.fallback.Run(ctx, turn, emit)
	}

	p, ok := parsePlan(raw)
	if !ok {
		s.logger.WithField("raw", raw).Warn("plan response did not parse, falling back to react mode")
		return s.fallback.Run(ctx, turn, emit)
	}

	emit(stream.Chunk{Type: stream.ChunkReasoningStart})
	emit(stream.Chunk{Type: stream.ChunkReasoningChunk, Text: fmt.Sprintf("[PLANNING] goal: %s (%d steps)", p.Goal, len(p.Steps))})

	var steps []react.HistoryStep
	seen := make(map[string]bool)

	for i, ps := range p.Steps {
		key := ps.Action + "|" + fmt.Sprint(ps.Params)
		phase := react.Phase(ps.Phase)
		if phase == "" {
			phase = react.PhaseExecution
		}

		var action react.Action
		switch {
		case seen[key]:
			action = react.Action{ID: uuid.NewString(), ToolName: ps.Action, Params: ps.Params, Status: react.ActionSkipped}
		case !toolExists(s.registry, ps.Action):
			action = react.Action{
				ID:       uuid.NewString(),
				ToolName: ps.Action,
				Params:   ps.Params,
				Status:   react.ActionFailed,
				Error:    string(registry.ErrNotFound),
			}
		default:
			seen[key] = true
			action = runPlanStep(ctx, s.registry, ps)
		}

		hs := react.HistoryStep{
			StepIndex: i,
			Phase:     phase,
			Action:    action,
			Timestamp: time.Now(),
		}
		steps = append(steps, hs)
		emit(stream.Chunk{Type: stream.ChunkReasoningChunk, Text: fmt.Sprintf("[%s] step %d: %s -> %s", phase, ps.Step, ps.Action, action.Status)})
	}

	emit(stream.Chunk{Type: stream.ChunkReasoningEnd})

	toolContext := summarizeToolResults(steps)

	emit(stream.Chunk{Type: stream.ChunkAnswerStart})
	var answer string
	for tok := range s.capability.StreamTokens(ctx, planAnswerSystemPrompt, toolContext+"\n\nUser request: "+turn.UserInput) {
		if tok.Err != nil {
			emit(stream.Chunk{Type: stream.ChunkError, Message: tok.Err.Error()})
			return Result{Success: false, Error: tok.Err.Error(), History: steps}, nil
		}
		if tok.Done {
			break
		}
		answer += tok.Text
		emit(stream.Chunk{Type: stream.ChunkAnswerChunk, Text: tok.Text})
	}

	emit(stream.Chunk{Type: stream.ChunkDone, Stats: &stream.Stats{TotalSteps: len(steps), ToolsUsed: toolsUsed(steps)}})

	return Result{
		Success: answer != "",
		Answer:  answer,
		Reasoning: ReasoningSummary{
			Text:       toolContext,
			TotalSteps: len(steps),
			ToolsUsed:  toolsUsed(steps),
		},
		History: steps,
	}, nil
}

func toolExists(reg *registry.Registry, name string) bool {
	for _, d := range reg.List() {
		if d.Name == name {
			return true
		}
	}
	return false
}

func runPlanStep(ctx context.Context, reg *registry.Registry, ps planStep) react.Action {
	action := react.Action{ID: uuid.NewString(), ToolName: ps.Action, Params: ps.Params, Status: react.ActionRunning, StartedAt: time.Now()}
	result := reg.Execute(ctx, ps.Action, ps.Params)
	action.EndedAt = time.Now()

	switch {
	case result.Success:
		action.Status = react.ActionSuccess
		action.Result = result.Value
	case result.Kind == registry.ErrTimeout:
		action.Status = react.ActionTimeout
		action.Error = result.Message
	default:
		action.Status = react.ActionFailed
		action.Error = result.Message
	}
	return action
}

func toolsUsed(steps []react.HistoryStep) []string {
	seen := make(map[string]bool)
	var out []string
	for _, step := range steps {
		if step.Action.ToolName == "" || step.Action.Status == react.ActionSkipped {
			continue
		}
		if !seen[step.Action.ToolName] {
			seen[step.Action.ToolName] = true
			out = append(out, step.Action.ToolName)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func parsePlan(raw string) (plan, bool) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return plan{}, false
	}
	var p plan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return plan{}, false
	}
	if len(p.Steps) == 0 {
		return plan{}, false
	}
	return p, true
}
