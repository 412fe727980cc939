/*
Package registry implements the Tool Registry: a one-shot-registration
mapping from tool name to descriptor and executor, with deadline
enforcement and a uniform result shape.
*/
package registry

// ErrorKind classifies why a tool execution did not succeed.
type ErrorKind string

const (
	ErrNotFound       ErrorKind = "not_found"
	ErrInvalidParams  ErrorKind = "invalid_params"
	ErrExecutionError ErrorKind = "execution_error"
	ErrTimeout        ErrorKind = "timeout"
)

// Result is the discriminated outcome of a tool execution.
type Result struct {
	Success bool
	Value   string
	Kind    ErrorKind
	Message string
}

// Ok wraps a successful tool value.
func Ok(value string) Result {
	return Result{Success: true, Value: value}
}

// Fail wraps a failed tool outcome.
func Fail(kind ErrorKind, message string) Result {
	return Result{Success: false, Kind: kind, Message: message}
}
