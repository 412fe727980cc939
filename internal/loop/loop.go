/*
Package loop implements the ReAct Loop (C6): the bounded state
machine stitching the Tool Registry, Short-Term Memory, Thought Engine
and Evaluation Engine together. Grounded in the distilled system's
agent/src/core/react_loop.py.
*/
package loop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelagent/internal/evaluate"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/thought"
)

// Config bounds one loop run.
type Config struct {
	MaxSteps     int
	TaskDeadline time.Time // zero value means no deadline
}

// DefaultConfig matches spec's documented default of 10 steps.
func DefaultConfig() Config {
	return Config{MaxSteps: 10}
}

// EmitFunc receives a formatted trace of one completed step, the
// thinking callback the Mode Dispatcher attaches before Run.
type EmitFunc func(step react.HistoryStep, formatted string)

// Result is what the loop returns once it terminates.
type Result struct {
	Completed  bool
	Steps      []react.HistoryStep
	ToolsUsed  []string
	FinalError string
}

// Loop runs one bounded ReAct task. A Loop is single-use: construct a
// fresh one per task via New.
type Loop struct {
	cfg      Config
	registry *registry.Registry
	engine   *thought.Engine
	memory   *react.Memory
	logger   *logrus.Entry
}

// New constructs a Loop for one task.
func New(cfg Config, reg *registry.Registry, engine *thought.Engine, logger *logrus.Entry) *Loop {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultConfig().MaxSteps
	}
	return &Loop{
		cfg:      cfg,
		registry: reg,
		engine:   engine,
		memory:   react.NewMemory(),
		logger:   logger,
	}
}

// Run drives the state machine to completion: IDLE is implicit on
// entry; each iteration moves REASONING -> ACTING -> OBSERVING ->
// EVALUATING before looping or exiting to COMPLETED/ERROR.
func (l *Loop) Run(ctx context.Context, userInput string, emit EmitFunc) Result {
	started := time.Now()

	var pendingSteps []react.PlannedStep
	stopAfterThisStep := false

	for step := 0; step < l.cfg.MaxSteps; step++ {
		if l.deadlineExceeded() {
			return l.finish(false, "task deadline exceeded")
		}
		select {
		case <-ctx.Done():
			return l.finish(false, "cancelled")
		default:
		}

		observation := react.Observation{
			StepIndex:   step,
			History:     l.memory.View(),
			LastAction:  l.memory.LastAction(),
			ElapsedTime: time.Since(started),
		}

		var currentThought react.Thought
		var phase react.Phase

		switch {
		case step == 0:
			analysis := l.engine.AnalyzeTask(ctx, userInput, nil)

			planning := l.engine.PlanActions(analysis, l.registry.List())
			if planning.Decision == nil || len(planning.Decision.Steps) == 0 {
				// No tool steps to report on; skip straight to the
				// direct-answer decision instead of recording an
				// understanding step nothing else ever refers to.
				return l.directAnswerFallback(emit)
			}

			l.recordAndEmit(react.HistoryStep{
				StepIndex: step,
				Phase:     react.PhaseUnderstanding,
				Thought:   analysis.Thought,
				Timestamp: time.Now(),
			}, emit)
			pendingSteps = planning.Decision.Steps
			currentThought = planning
			phase = react.PhasePlanning

		case stopAfterThisStep:
			currentThought = l.engine.Decide(observation)
			phase = react.PhaseGeneration

		default:
			lastAction := observation.LastAction
			if lastAction != nil && (lastAction.Status == react.ActionFailed || lastAction.Status == react.ActionTimeout) {
				currentThought = l.engine.Reflect(observation, nextPlannedStep(pendingSteps))
			} else {
				currentThought = l.engine.Infer(observation)
			}
			phase = react.PhaseExecution
		}

		if l.stopPredicate(currentThought, step) && !stopAfterThisStep {
			// Stop condition reached this step; still act on the
			// current thought's decision (if any) before exiting on
			// the next iteration's DECISION thought.
			stopAfterThisStep = true
		}

		action := l.act(ctx, currentThought, &pendingSteps)
		evaluation := evaluate.Evaluate(action)

		hs := react.HistoryStep{
			StepIndex:  step,
			Phase:      phase,
			Thought:    currentThought,
			Action:     action,
			Evaluation: evaluation,
			Timestamp:  time.Now(),
		}
		l.recordAndEmit(hs, emit)

		if currentThought.Type == react.ThoughtDecision {
			return l.finish(true, "")
		}
		if step == l.cfg.MaxSteps-1 {
			return l.finishExhausted()
		}
	}

	return l.finishExhausted()
}

// stopPredicate implements §4.5 step 3: stop iff a terminal tool just
// succeeded, or the current thought is high-confidence with a
// decision, or we are at the last allowed step.
func (l *Loop) stopPredicate(t react.Thought, step int) bool {
	if last := l.memory.LastAction(); last != nil && last.Status == react.ActionSuccess {
		for _, name := range l.registry.TerminalNames() {
			if last.ToolName == name {
				return true
			}
		}
	}
	if t.Confidence > 0.9 && t.Decision != nil {
		return true
	}
	return step >= l.cfg.MaxSteps-1
}

// act resolves the current thought's decision to a tool call (or a
// SKIPPED action if there is no tool to call), coalescing duplicate
// (tool, params) pairs and refusing to retry a call already recorded
// as failed or timed out within this task.
func (l *Loop) act(ctx context.Context, t react.Thought, pending *[]react.PlannedStep) react.Action {
	var step *react.PlannedStep
	if t.Decision != nil && len(t.Decision.Steps) > 0 {
		step = &t.Decision.Steps[0]
		// PLANNING's decision aliases pendingSteps itself, and
		// REFLECTION's revised decision is always built from
		// pendingSteps[0] (see nextPlannedStep) - either way, if the
		// step we're about to run is the queue's head, consume it so
		// the next default-branch iteration doesn't run it again.
		if len(*pending) > 0 && samePlannedStep((*pending)[0], *step) {
			*pending = (*pending)[1:]
		}
	} else if len(*pending) > 0 {
		step = &(*pending)[0]
		*pending = (*pending)[1:]
	}

	if step == nil {
		return react.Action{ID: uuid.NewString(), Status: react.ActionSkipped}
	}

	if l.memory.HasIdenticalCall(step.Tool, step.Params) {
		return react.Action{
			ID:       uuid.NewString(),
			ToolName: step.Tool,
			Params:   step.Params,
			Status:   react.ActionSkipped,
		}
	}

	action := react.Action{
		ID:        uuid.NewString(),
		ToolName:  step.Tool,
		Params:    step.Params,
		Status:    react.ActionRunning,
		StartedAt: time.Now(),
	}

	result := l.registry.Execute(ctx, step.Tool, step.Params)
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

func nextPlannedStep(pending []react.PlannedStep) *react.PlannedStep {
	if len(pending) == 0 {
		return nil
	}
	return &pending[0]
}

func samePlannedStep(a, b react.PlannedStep) bool {
	if a.Tool != b.Tool || len(a.Params) != len(b.Params) {
		return false
	}
	for k, v := range a.Params {
		if b.Params[k] != v {
			return false
		}
	}
	return true
}

func (l *Loop) recordAndEmit(step react.HistoryStep, emit EmitFunc) {
	l.memory.Record(step)
	if emit != nil {
		emit(step, formatStep(step))
	}
}

func formatStep(step react.HistoryStep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", step.Phase, step.Thought.Type, step.Thought.Content)
	if step.Action.ToolName != "" {
		fmt.Fprintf(&b, " -> %s (%s)", step.Action.ToolName, step.Action.Status)
	}
	return b.String()
}

func (l *Loop) deadlineExceeded() bool {
	return !l.cfg.TaskDeadline.IsZero() && time.Now().After(l.cfg.TaskDeadline)
}

func (l *Loop) directAnswerFallback(emit EmitFunc) Result {
	decision := react.Thought{
		ID:         uuid.NewString(),
		Type:       react.ThoughtDecision,
		Phase:      react.PhaseGeneration,
		Content:    "no tool steps planned, delegating to direct answer",
		Confidence: 0.8,
	}
	hs := react.HistoryStep{
		StepIndex: 0,
		Phase:     react.PhaseGeneration,
		Thought:   decision,
		Action:    react.Action{ID: uuid.NewString(), Status: react.ActionSkipped},
		Timestamp: time.Now(),
	}
	l.recordAndEmit(hs, emit)
	return l.finish(true, "")
}

func (l *Loop) finish(completed bool, errMsg string) Result {
	return Result{
		Completed:  completed,
		Steps:      l.memory.View(),
		ToolsUsed:  l.memory.ToolsUsed(),
		FinalError: errMsg,
	}
}

// finishExhausted implements the max_steps hard stop: COMPLETED if
// any action succeeded with content, else ERROR.
func (l *Loop) finishExhausted() Result {
	for _, step := range l.memory.View() {
		if step.Action.Status == react.ActionSuccess && step.Action.Result != "" {
			return l.finish(true, "")
		}
	}
	return l.finish(false, "max_steps exhausted with no successful action")
}
