package thought

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/internal/llm"
	"travelagent/internal/react"
	"travelagent/internal/registry"
)

type fakeCapability struct {
	completeResponse string
	completeErr      error
}

func (f *fakeCapability) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.completeResponse, f.completeErr
}

func (f *fakeCapability) StreamTokens(ctx context.Context, systemPrompt, userPrompt string) <-chan llm.Token {
	ch := make(chan llm.Token, 1)
	ch <- llm.Token{Done: true}
	close(ch)
	return ch
}

func newTestEngine(cap llm.Capability) *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(cap, logger)
}

func TestAnalyzeTaskUsesLLMWhenParseable(t *testing.T) {
	e := newTestEngine(&fakeCapability{completeResponse: `{"intent":"city_recommendation","entities":{"interests":"美食"}}`})

	analysis := e.AnalyzeTask(context.Background(), "推荐一个适合美食的城市", nil)
	assert.Equal(t, IntentCityRecommendation, analysis.Intent)
	assert.Equal(t, "美食", analysis.Entities["interests"])
	assert.Equal(t, react.ThoughtAnalysis, analysis.Thought.Type)
	assert.Equal(t, 0.8, analysis.Thought.Confidence)
}

func TestAnalyzeTaskFallsBackOnLLMError(t *testing.T) {
	e := newTestEngine(&fakeCapability{completeErr: errors.New("provider down")})

	analysis := e.AnalyzeTask(context.Background(), "推荐一个适合美食的城市", nil)
	assert.Equal(t, IntentCityRecommendation, analysis.Intent)
	assert.Equal(t, 0.6, analysis.Thought.Confidence)
}

func TestAnalyzeTaskFallsBackOnUnparseableResponse(t *testing.T) {
	e := newTestEngine(&fakeCapability{completeResponse: "not json at all"})

	analysis := e.AnalyzeTask(context.Background(), "北京有什么好玩的景点", nil)
	assert.Equal(t, IntentAttractionQuery, analysis.Intent)
	assert.Equal(t, 0.6, analysis.Thought.Confidence)
}

func TestAnalyzeTaskInvalidIntentFallsBackToGeneralChat(t *testing.T) {
	e := newTestEngine(&fakeCapability{completeResponse: `{"intent":"not_a_real_intent","entities":{}}`})

	analysis := e.AnalyzeTask(context.Background(), "hello", nil)
	assert.Equal(t, IntentGeneralChat, analysis.Intent)
}

func TestClassifyRuleBased(t *testing.T) {
	cases := map[string]Intent{
		"推荐一个去哪旅游": IntentCityRecommendation,
		"这里有什么好玩的景点":    IntentAttractionQuery,
		"帮我规划五天的行程":     IntentRoutePlanning,
		"我喜欢安静的地方，预算改为一千": IntentPreferenceUpdate,
		"你好":            IntentGeneralChat,
	}
	for input, want := range cases {
		got, _ := classifyRuleBased(input)
		assert.Equal(t, want, got, "input=%q", input)
	}
}

func TestPlanActionsCityRecommendation(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	analysis := Analysis{
		Intent:   IntentCityRecommendation,
		Entities: map[string]string{"interests": "美食", "season": "秋季"},
	}
	registryView := []registry.Descriptor{{Name: "search_cities"}}

	planned := e.PlanActions(analysis, registryView)
	require.NotNil(t, planned.Decision)
	require.Len(t, planned.Decision.Steps, 1)
	assert.Equal(t, "search_cities", planned.Decision.Steps[0].Tool)
	assert.Equal(t, "美食", planned.Decision.Steps[0].Params["interests"])
}

func TestPlanActionsAppendsFinalAnswerWhenAvailable(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	analysis := Analysis{
		Intent:   IntentCityRecommendation,
		Entities: map[string]string{"interests": "美食"},
	}
	registryView := []registry.Descriptor{{Name: "search_cities"}, {Name: "final_answer"}}

	planned := e.PlanActions(analysis, registryView)
	require.NotNil(t, planned.Decision)
	require.Len(t, planned.Decision.Steps, 2)
	assert.Equal(t, "search_cities", planned.Decision.Steps[0].Tool)
	assert.Equal(t, "final_answer", planned.Decision.Steps[1].Tool)
}

func TestPlanActionsSkipsUnavailableTool(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	analysis := Analysis{Intent: IntentCityRecommendation}

	planned := e.PlanActions(analysis, nil)
	assert.Nil(t, planned.Decision)
	assert.Equal(t, 0.5, planned.Confidence)
}

func TestPlanActionsGeneralChatProducesNoSteps(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	planned := e.PlanActions(Analysis{Intent: IntentGeneralChat}, []registry.Descriptor{{Name: "search_cities"}})
	assert.Nil(t, planned.Decision)
}

func TestInferSummarizesLastAction(t *testing.T) {
	e := newTestEngine(&fakeCapability{})

	thought := e.Infer(react.Observation{LastAction: &react.Action{
		ToolName: "search_cities",
		Status:   react.ActionSuccess,
		Result:   "Chengdu, Xian",
	}})
	assert.Equal(t, react.ThoughtInference, thought.Type)
	assert.Contains(t, thought.Content, "search_cities")
	assert.Equal(t, 0.75, thought.Confidence)
}

func TestInferWithNoPriorAction(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	thought := e.Infer(react.Observation{})
	assert.Contains(t, thought.Content, "no prior action")
}

func TestReflectWithRevisedStep(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	revised := &react.PlannedStep{Tool: "query_attractions"}

	thought := e.Reflect(react.Observation{}, revised)
	require.NotNil(t, thought.Decision)
	assert.Equal(t, "query_attractions", thought.Decision.Steps[0].Tool)
}

func TestDecideMentionsStepCount(t *testing.T) {
	e := newTestEngine(&fakeCapability{})
	thought := e.Decide(react.Observation{StepIndex: 2})
	assert.Equal(t, react.ThoughtDecision, thought.Type)
	assert.Contains(t, thought.Content, "3 step")
}
