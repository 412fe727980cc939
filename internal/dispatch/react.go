package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"travelagent/internal/llm"
	"travelagent/internal/loop"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
	"travelagent/internal/thought"
)

const reactAnswerSystemPrompt = `You are a travel assistant. You have already gathered the ` +
	`following tool results while reasoning about the user's request. Write a direct, ` +
	`friendly final answer using them; do not mention tools or internal steps.`

// reactStrategy drives the ReAct Loop, translating each step's
// formatted trace into reasoning_chunk events, then performs one
// final LLM streaming call conditioned on the collected tool results
// to produce the user-facing answer.
type reactStrategy struct {
	registry   *registry.Registry
	engine     *thought.Engine
	capability llm.Capability
	maxSteps   int
	logger     *logrus.Logger
}

func (s *reactStrategy) Run(ctx context.Context, turn Turn, emit stream.Emit) (Result, error) {
	l := newLoop(loop.Config{MaxSteps: s.maxSteps}, s.registry, s.engine, s.logger.WithField("session_id", turn.SessionID))

	emit(stream.Chunk{Type: stream.ChunkReasoningStart})
	result := l.Run(ctx, turn.UserInput, func(step react.HistoryStep, formatted string) {
		emit(stream.Chunk{Type: stream.ChunkReasoningChunk, Text: formatted})
	})
	emit(stream.Chunk{Type: stream.ChunkReasoningEnd})

	toolContext := summarizeToolResults(result.Steps)

	emit(stream.Chunk{Type: stream.ChunkAnswerStart})
	var answer string
	for tok := range s.capability.StreamTokens(ctx, reactAnswerSystemPrompt, toolContext+"\n\nUser request: "+turn.UserInput) {
		if tok.Err != nil {
			emit(stream.Chunk{Type: stream.ChunkError, Message: tok.Err.Error()})
			return Result{Success: false, Error: tok.Err.Error(), History: result.Steps}, nil
		}
		if tok.Done {
			break
		}
		answer += tok.Text
		emit(stream.Chunk{Type: stream.ChunkAnswerChunk, Text: tok.Text})
	}

	success := result.Completed && answer != ""
	if !success && result.FinalError != "" {
		emit(stream.Chunk{Type: stream.ChunkError, Message: result.FinalError})
	}

	emit(stream.Chunk{Type: stream.ChunkDone, Stats: &stream.Stats{
		TotalSteps: len(result.Steps),
		ToolsUsed:  result.ToolsUsed,
	}})

	return Result{
		Success: success,
		Answer:  answer,
		Reasoning: ReasoningSummary{
			Text:       toolContext,
			TotalSteps: len(result.Steps),
			ToolsUsed:  result.ToolsUsed,
		},
		History: result.Steps,
		Error:   result.FinalError,
	}, nil
}

func summarizeToolResults(steps []react.HistoryStep) string {
	var b strings.Builder
	for _, step := range steps {
		if step.Action.Status == react.ActionSuccess && step.Action.Result != "" {
			fmt.Fprintf(&b, "- %s: %s\n", step.Action.ToolName, step.Action.Result)
		}
	}
	if b.Len() == 0 {
		return "No tool results were gathered."
	}
	return "Tool results gathered:\n" + b.String()
}
