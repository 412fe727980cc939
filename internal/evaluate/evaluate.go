/*
Package evaluate implements the Evaluation Engine (C5): a pure
function of an Action, holding no state about the task it evaluates.
Grounded in the distilled system's agent/src/core/evaluator.py.
*/
package evaluate

import "travelagent/internal/react"

// Evaluate derives an Evaluation from an Action. Success requires both
// a SUCCESS status and a non-empty result; the engine never mutates
// the action it is given.
func Evaluate(action react.Action) react.Evaluation {
	hasResult := action.Result != ""
	success := action.Status == react.ActionSuccess && hasResult

	delta := 0.0
	switch {
	case success:
		delta = 0.1
	case action.Status == react.ActionFailed, action.Status == react.ActionTimeout:
		delta = -0.1
	}

	return react.Evaluation{
		Success:         success,
		Duration:        action.Duration(),
		HasResult:       hasResult,
		ConfidenceDelta: delta,
	}
}
