package dispatch

import (
	"context"

	"travelagent/internal/llm"
	"travelagent/internal/stream"
)

const directSystemPrompt = `You are a concise, friendly travel assistant. Answer the user's ` +
	`message directly without describing any internal process.`

// directStrategy performs one LLM streaming call with a fixed system
// prompt: no tools, no history beyond the current turn.
type directStrategy struct {
	capability llm.Capability
}

func (s *directStrategy) Run(ctx context.Context, turn Turn, emit stream.Emit) (Result, error) {
	emit(stream.Chunk{Type: stream.ChunkAnswerStart})

	var answer string
	for tok := range s.capability.StreamTokens(ctx, directSystemPrompt, turn.UserInput) {
		if tok.Err != nil {
			emit(stream.Chunk{Type: stream.ChunkError, Message: tok.Err.Error()})
			return Result{Success: false, Error: tok.Err.Error()}, nil
		}
		if tok.Done {
			break
		}
		answer += tok.Text
		emit(stream.Chunk{Type: stream.ChunkAnswerChunk, Text: tok.Text})
	}

	emit(stream.Chunk{Type: stream.ChunkDone, Stats: &stream.Stats{TotalSteps: 0, ToolsUsed: []string{}}})

	return Result{
		Success: true,
		Answer:  answer,
		Reasoning: ReasoningSummary{
			Text:      "direct mode: no tool reasoning performed",
			ToolsUsed: []string{},
		},
	}, nil
}
