/*
Package rpc exposes the Agent Service as a gRPC server (C9): the
ProcessMessage, StreamMessage, and HealthCheck operations spec §4.8
names. It runs over a genuine grpc.Server/grpc.ClientConn pair, but
rather than hand-authoring protoc-generated .pb.go stubs it registers
a JSON codec so plain Go structs flow across the wire as gRPC
messages.
*/
package rpc

// MessageRequest is the shared request shape for ProcessMessage and
// StreamMessage.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
	ModelID   string `json:"model_id"`
	Stream    bool   `json:"stream"`
}

// ThoughtWire mirrors react.Thought for the wire.
type ThoughtWire struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Phase      string   `json:"phase"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Decision   []string `json:"decision,omitempty"`
}

// ActionWire mirrors react.Action for the wire.
type ActionWire struct {
	ID       string `json:"id"`
	ToolName string `json:"tool_name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Result   string `json:"result"`
	Error    string `json:"error"`
}

// EvaluationWire mirrors react.Evaluation for the wire.
type EvaluationWire struct {
	Success   bool   `json:"success"`
	Duration  string `json:"duration"`
	HasResult bool   `json:"has_result"`
}

// HistoryStepWire mirrors react.HistoryStep for the wire.
type HistoryStepWire struct {
	Step       int            `json:"step"`
	Phase      string         `json:"phase"`
	Thought    ThoughtWire    `json:"thought"`
	Action     ActionWire     `json:"action"`
	Evaluation EvaluationWire `json:"evaluation"`
	Timestamp  string         `json:"timestamp"`
}

// Reasoning is the nested reasoning summary MessageResponse carries.
type Reasoning struct {
	Text       string   `json:"text"`
	TotalSteps int      `json:"total_steps"`
	ToolsUsed  []string `json:"tools_used"`
}

// MessageResponse is ProcessMessage's unary response.
type MessageResponse struct {
	Success   bool              `json:"success"`
	Answer    string            `json:"answer"`
	Reasoning Reasoning         `json:"reasoning"`
	Error     string            `json:"error"`
	History   []HistoryStepWire `json:"history"`
}

// StreamChunk is one frame of StreamMessage's server-streaming
// response.
type StreamChunk struct {
	ChunkType string `json:"chunk_type"`
	Content   string `json:"content"`
	IsLast    bool   `json:"is_last"`
}

// HealthRequest is HealthCheck's empty request.
type HealthRequest struct{}

// HealthResponse is HealthCheck's response.
type HealthResponse struct {
	Alive   bool   `json:"alive"`
	Version string `json:"version"`
	Status  string `json:"status"`
}
