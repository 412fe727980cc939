package registry

import (
	"context"
	"time"
)

// Parameter describes one named, typed input a tool accepts.
type Parameter struct {
	Name        string
	Type        string // "string", "number", "bool", "list"
	Description string
	Required    bool
}

// Descriptor is the immutable, post-registration metadata for a tool.
// It never changes shape after Register returns.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	Timeout     time.Duration
	Category    string
	Tags        []string

	// Terminal marks a tool whose successful completion is treated as
	// an answer-producing endpoint by the ReAct Loop's stop predicate.
	Terminal bool
}

func (d Descriptor) requiredNames() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Executor is the function a tool registers to actually do work. It
// receives already-validated parameters and must respect ctx's
// deadline; the registry imposes that deadline, not the executor.
type Executor func(ctx context.Context, params map[string]string) (string, error)

type entry struct {
	descriptor Descriptor
	run        Executor
}
