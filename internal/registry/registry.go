package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry maintains the mapping from tool name to (Descriptor,
// Executor). Registration is one-shot at startup in the common case;
// the mutex exists because the spec permits rare dynamic registration,
// and because reads happen from concurrent ReAct Loop goroutines, one
// per in-flight task.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *logrus.Entry
}

// New creates an empty registry.
func New(logger *logrus.Logger) *Registry {
	return &Registry{
		entries: make(map[string]entry),
		logger:  logger.WithField("component", "registry"),
	}
}

// Register adds a tool under its declared name. Names must be unique;
// registering the same name twice is a programmer error and panics,
// matching the "one-shot at startup" contract in spec §4.1.
func (r *Registry) Register(d Descriptor, run Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; exists {
		panic(fmt.Sprintf("registry: tool %q already registered", d.Name))
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	r.entries[d.Name] = entry{descriptor: d, run: run}
	r.logger.WithFields(logrus.Fields{
		"tool":     d.Name,
		"timeout":  d.Timeout,
		"terminal": d.Terminal,
	}).Info("tool registered")
}

const defaultTimeout = 15 * time.Second

// List returns descriptors for every registered tool, ordered by name
// for deterministic prompt rendering.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Describe looks up a single tool's descriptor.
func (r *Registry) Describe(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.descriptor, ok
}

// TerminalNames returns the names of tools whose success the ReAct
// Loop's stop predicate treats as answer-producing.
func (r *Registry) TerminalNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, e := range r.entries {
		if e.descriptor.Terminal {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Execute validates parameters, runs the executor under the tool's
// declared deadline, and classifies the outcome per spec §4.1 / §7.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]string) Result {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.WithField("tool", name).Warn("execute: unknown tool")
		return Fail(ErrNotFound, fmt.Sprintf("unknown tool %q", name))
	}

	for _, required := range e.descriptor.requiredNames() {
		if _, present := params[required]; !present {
			return Fail(ErrInvalidParams, fmt.Sprintf("missing required parameter %q for tool %q", required, name))
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, e.descriptor.Timeout)
	defer cancel()

	type outcome struct {
		value string
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := e.run(runCtx, params)
		done <- outcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			r.logger.WithFields(logrus.Fields{"tool": name, "error": o.err}).Warn("tool execution failed")
			return Fail(ErrExecutionError, o.err.Error())
		}
		return Ok(o.value)
	case <-runCtx.Done():
		r.logger.WithField("tool", name).Warn("tool execution timed out")
		return Fail(ErrTimeout, fmt.Sprintf("tool %q exceeded its %s deadline", name, e.descriptor.Timeout))
	}
}
