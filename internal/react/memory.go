package react

import "sync"

// Memory is the bounded append-only sequence of HistoryStep entries
// for one task. It is owned exclusively by the loop that created it
// and is not shared across concurrent tasks, grounded in
// agent/src/core/memory.py's ShortTermMemory.
type Memory struct {
	mu    sync.Mutex
	steps []HistoryStep
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends a HistoryStep.
func (m *Memory) Record(step HistoryStep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step)
}

// View returns a read-only copy of the recorded steps in order.
func (m *Memory) View() []HistoryStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HistoryStep, len(m.steps))
	copy(out, m.steps)
	return out
}

// LastAction returns the most recently recorded action that carries a
// status (SKIPPED actions included; steps with no action are passed
// over), or nil if there is none.
func (m *Memory) LastAction() *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.steps) - 1; i >= 0; i-- {
		a := m.steps[i].Action
		if a.Status != "" {
			return &a
		}
	}
	return nil
}

// StepsCompleted returns the number of recorded steps.
func (m *Memory) StepsCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// ToolsUsed returns the distinct, in-first-use order, tool names of
// every non-skipped action recorded.
func (m *Memory) ToolsUsed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, step := range m.steps {
		if step.Action.ToolName == "" || step.Action.Status == ActionSkipped {
			continue
		}
		if !seen[step.Action.ToolName] {
			seen[step.Action.ToolName] = true
			out = append(out, step.Action.ToolName)
		}
	}
	return out
}

// HasIdenticalCall reports whether an action with this tool and these
// exact parameters has already been recorded, used by the loop to
// coalesce duplicate planned steps and to avoid retrying a failed
// call.
func (m *Memory) HasIdenticalCall(tool string, params map[string]string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, step := range m.steps {
		if step.Action.ToolName == tool && paramsEqual(step.Action.Params, params) {
			return true
		}
	}
	return false
}

func paramsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
