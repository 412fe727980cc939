package dispatch

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/internal/llm"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
	"travelagent/internal/thought"
)

type erroringAnalysisCapability struct{}

func (erroringAnalysisCapability) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("no provider configured in tests")
}

func (erroringAnalysisCapability) StreamTokens(ctx context.Context, systemPrompt, userPrompt string) <-chan llm.Token {
	ch := make(chan llm.Token, 1)
	ch <- llm.Token{Done: true}
	close(ch)
	return ch
}

func TestReactStrategyProducesAnswerFromToolResults(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg := registry.New(logger)
	reg.Register(registry.Descriptor{Name: "search_cities"}, func(ctx context.Context, params map[string]string) (string, error) {
		return "Chengdu, Xian", nil
	})

	engine := thought.New(erroringAnalysisCapability{}, logger)
	answerCap := &fakeStreamingCapability{tokens: []string{"Try Chengdu or Xian."}}

	s := &reactStrategy{registry: reg, engine: engine, capability: answerCap, maxSteps: 5, logger: logger}

	var chunks []stream.Chunk
	result, err := s.Run(context.Background(), Turn{SessionID: "s1", UserInput: "推荐一个适合美食的城市"}, func(c stream.Chunk) {
		chunks = append(chunks, c)
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Try Chengdu or Xian.", result.Answer)
	assert.Contains(t, result.Reasoning.ToolsUsed, "search_cities")

	var sawReasoningStart, sawReasoningEnd, sawDone bool
	for _, c := range chunks {
		switch c.Type {
		case stream.ChunkReasoningStart:
			sawReasoningStart = true
		case stream.ChunkReasoningEnd:
			sawReasoningEnd = true
		case stream.ChunkDone:
			sawDone = true
		}
	}
	assert.True(t, sawReasoningStart)
	assert.True(t, sawReasoningEnd)
	assert.True(t, sawDone)
}

func TestSummarizeToolResultsEmpty(t *testing.T) {
	assert.Equal(t, "No tool results were gathered.", summarizeToolResults(nil))
}
