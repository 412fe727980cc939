package dispatch

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/internal/llm"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
)

type fakeStrategy struct {
	called bool
	result Result
}

func (f *fakeStrategy) Run(ctx context.Context, turn Turn, emit stream.Emit) (Result, error) {
	f.called = true
	return f.result, nil
}

// planTestCapability lets a test control both the planning Complete
// call and the answer-synthesis StreamTokens call independently.
type planTestCapability struct {
	completeResponse string
	completeErr      error
	streamTokens     []string
}

func (c *planTestCapability) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.completeResponse, c.completeErr
}

func (c *planTestCapability) StreamTokens(ctx context.Context, systemPrompt, userPrompt string) <-chan llm.Token {
	ch := make(chan llm.Token)
	go func() {
		defer close(ch)
		for _, tok := range c.streamTokens {
			ch <- llm.Token{Text: tok}
		}
		ch <- llm.Token{Done: true}
	}()
	return ch
}

func newTestRegistryForPlan() *registry.Registry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := registry.New(logger)
	reg.Register(registry.Descriptor{Name: "search_cities"}, func(ctx context.Context, params map[string]string) (string, error) {
		return "Chengdu", nil
	})
	return reg
}

func TestParsePlanValid(t *testing.T) {
	raw := `{"goal":"find a city","steps":[{"step":1,"action":"search_cities","params":{"interests":"美食"},"phase":"EXECUTION"}]}`
	p, ok := parsePlan(raw)
	require.True(t, ok)
	assert.Equal(t, "find a city", p.Goal)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "search_cities", p.Steps[0].Action)
}

func TestParsePlanRejectsNoSteps(t *testing.T) {
	_, ok := parsePlan(`{"goal":"nothing to do","steps":[]}`)
	assert.False(t, ok)
}

func TestParsePlanRejectsUnparseable(t *testing.T) {
	_, ok := parsePlan("not json")
	assert.False(t, ok)
}

func TestPlanStrategyFallsBackOnUnparseablePlan(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	fallback := &fakeStrategy{result: Result{Success: true, Answer: "fallback answer"}}

	s := &planStrategy{
		registry:   newTestRegistryForPlan(),
		capability: &planTestCapability{completeResponse: "not json at all"},
		logger:     logger,
		fallback:   fallback,
	}

	result, err := s.Run(context.Background(), Turn{UserInput: "hi"}, func(c stream.Chunk) {})
	require.NoError(t, err)
	assert.True(t, fallback.called)
	assert.Equal(t, "fallback answer", result.Answer)
}

func TestPlanStrategyExecutesStepsAndFlagsUnknownTool(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	planJSON := `{"goal":"find and detail a city","steps":[` +
		`{"step":1,"action":"search_cities","params":{"interests":"美食"},"phase":"EXECUTION"},` +
		`{"step":2,"action":"query_attractions","params":{"cities":"Chengdu"},"phase":"EXECUTION"}` +
		`]}`

	s := &planStrategy{
		registry: newTestRegistryForPlan(),
		capability: &planTestCapability{
			completeResponse: planJSON,
			streamTokens:     []string{"Here is your plan result."},
		},
		logger:   logger,
		fallback: &fakeStrategy{},
	}

	var chunks []stream.Chunk
	result, err := s.Run(context.Background(), Turn{UserInput: "推荐并详细介绍一个城市"}, func(c stream.Chunk) {
		chunks = append(chunks, c)
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.History, 2)
	assert.Equal(t, react.ActionSuccess, result.History[0].Action.Status)
	assert.Equal(t, react.ActionFailed, result.History[1].Action.Status)
	assert.Equal(t, string(registry.ErrNotFound), result.History[1].Action.Error)
	assert.Contains(t, result.Reasoning.ToolsUsed, "search_cities")
	assert.NotEmpty(t, chunks)
}

func TestToolsUsedNeverReturnsNil(t *testing.T) {
	assert.Equal(t, []string{}, toolsUsed(nil))
}

func TestToolExists(t *testing.T) {
	reg := newTestRegistryForPlan()
	assert.True(t, toolExists(reg, "search_cities"))
	assert.False(t, toolExists(reg, "nonexistent_tool"))
}
