/*
Package thought implements the Thought Engine (C4): it produces
Thought values from observations, calling the LLM Capability for
structured reasoning and falling back to rule-based heuristics when
the LLM fails or returns something unparseable. The engine holds no
state about the task being reasoned over; every method is a pure
function of its inputs plus the wrapped Capability.

Grounded in the distilled system's agent/src/core/thought_engine.py.
*/
package thought

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelagent/internal/llm"
	"travelagent/internal/react"
	"travelagent/internal/registry"
)

// Intent is a coarse classification of what the user is asking for,
// drawn from a closed set.
type Intent string

const (
	IntentCityRecommendation Intent = "city_recommendation"
	IntentAttractionQuery    Intent = "attraction_query"
	IntentRoutePlanning      Intent = "route_planning"
	IntentPreferenceUpdate   Intent = "preference_update"
	IntentGeneralChat        Intent = "general_chat"
)

// Analysis carries the ANALYSIS thought plus the structured intent and
// entities the loop and Plan mode need, without forcing callers to
// re-parse Thought.Content.
type Analysis struct {
	Thought  react.Thought
	Intent   Intent
	Entities map[string]string
}

// Engine produces Thought values. It holds no per-task state.
type Engine struct {
	capability llm.Capability
	logger     *logrus.Logger
}

// New builds a Thought Engine over an LLM Capability.
func New(capability llm.Capability, logger *logrus.Logger) *Engine {
	return &Engine{capability: capability, logger: logger}
}

func newID() string {
	return uuid.NewString()
}

const analysisPrompt = `You classify a travel-assistant user message into exactly one intent
from this set: city_recommendation, attraction_query, route_planning, preference_update, general_chat.
Also extract any city names, interests, or day counts you find.
Respond with a single JSON object: {"intent": "...", "entities": {"city": "...", "interests": "...", "days": "..."}}.
Only include entity keys you actually found. Respond with JSON only, no prose.`

type analysisPayload struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// AnalyzeTask classifies the user's input, trying the LLM first and
// falling back to a rule-based classifier (fail-open to general_chat)
// if the LLM call fails or its response does not parse.
func (e *Engine) AnalyzeTask(ctx context.Context, userInput string, history []react.HistoryStep) Analysis {
	raw, err := e.capability.Complete(ctx, analysisPrompt, userInput)
	if err == nil {
		if analysis, ok := parseAnalysis(raw); ok {
			return e.buildAnalysis(analysis.Intent, analysis.Entities, 0.8)
		}
		e.logger.WithField("raw", raw).Debug("analysis response did not parse as JSON, falling back")
	} else {
		e.logger.WithError(err).Warn("analysis llm call failed, falling back to rule-based classifier")
	}

	intent, entities := classifyRuleBased(userInput)
	return e.buildAnalysis(string(intent), entities, 0.6)
}

func parseAnalysis(raw string) (analysisPayload, bool) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return analysisPayload{}, false
	}
	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return analysisPayload{}, false
	}
	if payload.Intent == "" {
		return analysisPayload{}, false
	}
	return payload, true
}

func (e *Engine) buildAnalysis(intent string, entities map[string]string, confidence float64) Analysis {
	it := Intent(intent)
	if !validIntent(it) {
		it = IntentGeneralChat
	}
	if entities == nil {
		entities = map[string]string{}
	}
	return Analysis{
		Thought: react.Thought{
			ID:         newID(),
			Type:       react.ThoughtAnalysis,
			Phase:      react.PhaseUnderstanding,
			Content:    fmt.Sprintf("intent=%s entities=%v", it, entities),
			Confidence: confidence,
		},
		Intent:   it,
		Entities: entities,
	}
}

func validIntent(it Intent) bool {
	switch it {
	case IntentCityRecommendation, IntentAttractionQuery, IntentRoutePlanning, IntentPreferenceUpdate, IntentGeneralChat:
		return true
	default:
		return false
	}
}

// classifyRuleBased is the fail-open fallback classifier: it matches
// keyword families against the raw user input rather than calling the
// LLM.
func classifyRuleBased(userInput string) (Intent, map[string]string) {
	entities := map[string]string{}
	lower := strings.ToLower(userInput)

	switch {
	case containsAny(lower, "推荐", "适合", "哪个城市", "去哪"):
		return IntentCityRecommendation, entities
	case containsAny(lower, "景点", "好玩", "attraction"):
		return IntentAttractionQuery, entities
	case containsAny(lower, "规划", "路线", "行程", "几日", "天游"):
		return IntentRoutePlanning, entities
	case containsAny(lower, "偏好", "喜欢", "预算改为"):
		return IntentPreferenceUpdate, entities
	default:
		return IntentGeneralChat, entities
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// PlanActions produces the PLANNING thought: an ordered list of
// proposed (tool, params) steps grounded in the analysis and the
// tools the registry currently advertises. It prefers a deterministic
// mapping from intent to tool over calling the LLM a second time,
// since the available tool set is small and closed; this mirrors the
// distilled planner's fallback path, used here as the primary path.
func (e *Engine) PlanActions(analysis Analysis, registryView []registry.Descriptor) react.Thought {
	available := make(map[string]bool, len(registryView))
	for _, d := range registryView {
		available[d.Name] = true
	}

	var steps []react.PlannedStep
	switch analysis.Intent {
	case IntentCityRecommendation:
		if available["search_cities"] {
			steps = append(steps, react.PlannedStep{
				Tool: "search_cities",
				Params: map[string]string{
					"interests": analysis.Entities["interests"],
					"season":    analysis.Entities["season"],
				},
			})
		}
	case IntentAttractionQuery:
		if available["query_attractions"] {
			steps = append(steps, react.PlannedStep{
				Tool:   "query_attractions",
				Params: map[string]string{"cities": analysis.Entities["city"]},
			})
		}
	case IntentRoutePlanning:
		if available["get_city_info"] && analysis.Entities["city"] != "" {
			steps = append(steps, react.PlannedStep{
				Tool:   "get_city_info",
				Params: map[string]string{"city": analysis.Entities["city"]},
			})
		}
		if available["calculate_budget"] {
			steps = append(steps, react.PlannedStep{
				Tool: "calculate_budget",
				Params: map[string]string{
					"city": analysis.Entities["city"],
					"days": analysis.Entities["days"],
				},
			})
		}
	case IntentPreferenceUpdate, IntentGeneralChat:
		// No tool call needed; the loop falls back to a direct answer.
	}

	// A plan that gathers at least one tool result closes with the
	// terminal tool, so the loop's stop predicate can actually observe
	// a terminal success instead of running to max_steps every time.
	if len(steps) > 0 && available["final_answer"] {
		steps = append(steps, react.PlannedStep{Tool: "final_answer"})
	}

	confidence := 0.5
	if len(steps) > 0 {
		confidence = 0.7
	}

	var decision *react.Decision
	if len(steps) > 0 {
		decision = &react.Decision{Steps: steps}
	}

	return react.Thought{
		ID:         newID(),
		Type:       react.ThoughtPlanning,
		Phase:      react.PhasePlanning,
		Content:    fmt.Sprintf("planned %d step(s) for intent %s", len(steps), analysis.Intent),
		Confidence: confidence,
		Decision:   decision,
	}
}

// Infer produces an INFERENCE thought summarizing the last
// observation, used by every non-initial, non-final loop iteration.
func (e *Engine) Infer(observation react.Observation) react.Thought {
	content := "no prior action to summarize"
	confidence := 0.6
	if observation.LastAction != nil {
		a := observation.LastAction
		switch a.Status {
		case react.ActionSuccess:
			content = fmt.Sprintf("tool %s succeeded: %s", a.ToolName, truncate(a.Result, 200))
			confidence = 0.75
		case react.ActionFailed, react.ActionTimeout:
			content = fmt.Sprintf("tool %s did not complete (%s): %s", a.ToolName, a.Status, a.Error)
			confidence = 0.5
		default:
			content = fmt.Sprintf("tool %s finished with status %s", a.ToolName, a.Status)
		}
	}

	return react.Thought{
		ID:         newID(),
		Type:       react.ThoughtInference,
		Phase:      react.PhaseExecution,
		Content:    content,
		Confidence: confidence,
	}
}

// Reflect produces a REFLECTION thought after a failed or timed-out
// action, optionally carrying a revised single-step decision.
func (e *Engine) Reflect(observation react.Observation, revised *react.PlannedStep) react.Thought {
	content := "reflecting on failed action; no alternative tool available"
	var decision *react.Decision
	if revised != nil {
		content = fmt.Sprintf("revising plan: trying %s instead", revised.Tool)
		decision = &react.Decision{Steps: []react.PlannedStep{*revised}}
	}
	return react.Thought{
		ID:         newID(),
		Type:       react.ThoughtReflection,
		Phase:      react.PhaseExecution,
		Content:    content,
		Confidence: 0.55,
		Decision:   decision,
	}
}

// Decide produces the final DECISION thought marking readiness to
// answer, emitted once the loop's stop predicate is satisfied.
func (e *Engine) Decide(observation react.Observation) react.Thought {
	return react.Thought{
		ID:         newID(),
		Type:       react.ThoughtDecision,
		Phase:      react.PhaseGeneration,
		Content:    fmt.Sprintf("ready to answer after %d step(s)", observation.StepIndex+1),
		Confidence: 0.95,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
