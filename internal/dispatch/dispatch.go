/*
Package dispatch implements the Mode Dispatcher (C7): a tagged
variant over {Direct, ReAct, Plan}, each implementing a uniform
Run(ctx, turn, emit) (Result, error) capability. Grounded in the
distilled system's agent/src/core/orchestrator.py mode selection.
*/
package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"travelagent/internal/llm"
	"travelagent/internal/loop"
	"travelagent/internal/react"
	"travelagent/internal/registry"
	"travelagent/internal/stream"
	"travelagent/internal/thought"
)

// Mode selects the reasoning strategy for one turn.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeReact  Mode = "react"
	ModePlan   Mode = "plan"
)

// DefaultMode matches the client-supplied default.
const DefaultMode = ModeReact

// Turn is one user message plus everything a strategy needs to
// answer it.
type Turn struct {
	SessionID string
	UserInput string
	Mode      Mode
}

// ReasoningSummary is the buffered view ProcessMessage returns.
type ReasoningSummary struct {
	Text       string
	TotalSteps int
	ToolsUsed  []string
}

// Result is what every strategy returns once its turn completes.
type Result struct {
	Success   bool
	Answer    string
	Reasoning ReasoningSummary
	History   []react.HistoryStep
	Error     string
}

// strategy is the uniform shape every mode implements.
type strategy interface {
	Run(ctx context.Context, turn Turn, emit stream.Emit) (Result, error)
}

// Dispatcher owns the shared services every strategy needs and picks
// one per turn based on the mode field, defaulting to ReAct.
type Dispatcher struct {
	registry   *registry.Registry
	capability llm.Capability
	engine     *thought.Engine
	maxSteps   int
	logger     *logrus.Logger
}

// New builds a Dispatcher.
func New(reg *registry.Registry, capability llm.Capability, maxSteps int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		registry:   reg,
		capability: capability,
		engine:     thought.New(capability, logger),
		maxSteps:   maxSteps,
		logger:     logger,
	}
}

// Dispatch selects and runs a strategy for one turn. session_id is
// always emitted first, exactly once, by the caller before Dispatch
// is invoked; Dispatch itself only emits reasoning/answer/error/done
// events.
func (d *Dispatcher) Dispatch(ctx context.Context, turn Turn, emit stream.Emit) (Result, error) {
	mode := turn.Mode
	if mode == "" {
		mode = DefaultMode
	}

	var s strategy
	switch mode {
	case ModeDirect:
		s = &directStrategy{capability: d.capability}
	case ModePlan:
		s = &planStrategy{
			registry:   d.registry,
			capability: d.capability,
			logger:     d.logger,
			fallback:   &reactStrategy{registry: d.registry, engine: d.engine, capability: d.capability, maxSteps: d.maxSteps, logger: d.logger},
		}
	default:
		s = &reactStrategy{registry: d.registry, engine: d.engine, capability: d.capability, maxSteps: d.maxSteps, logger: d.logger}
	}

	started := time.Now()
	result, err := s.Run(ctx, turn, emit)
	d.logger.WithFields(logrus.Fields{
		"mode":       mode,
		"session_id": turn.SessionID,
		"duration":   time.Since(started),
		"success":    result.Success,
	}).Info("turn dispatched")
	return result, err
}

func newLoop(cfg loop.Config, reg *registry.Registry, engine *thought.Engine, logger *logrus.Entry) *loop.Loop {
	return loop.New(cfg, reg, engine, logger.WithField("component", "react_loop"))
}
