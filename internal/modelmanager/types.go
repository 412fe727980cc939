/*
Package modelmanager loads and validates the model configuration file
spec §6 names, and tracks model status for the /api/models endpoints.
Grounded in the distilled system's agent/src/llm/manager.py
(ModelManager, ModelInfo, ModelStatus, ModelConfigValidator).
*/
package modelmanager

import "time"

// Provider enumerates the LLM providers spec §6 names.
type Provider string

const (
	ProviderOpenAI           Provider = "openai"
	ProviderAnthropic        Provider = "anthropic"
	ProviderGoogle           Provider = "google"
	ProviderOpenAICompatible Provider = "openai-compatible"
)

// Status mirrors llm/manager.py's ModelStatus enum.
type Status string

const (
	StatusAvailable Status = "available"
	StatusLoading   Status = "loading"
	StatusError     Status = "error"
	StatusDisabled  Status = "disabled"
)

// ModelConfig is one entry of the model configuration file, matching
// spec §6's field list exactly.
type ModelConfig struct {
	ModelID     string   `yaml:"model_id"`
	Name        string   `yaml:"name"`
	Provider    Provider `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIBase     string   `yaml:"api_base,omitempty"`
	APIKey      string   `yaml:"api_key"`
	APIVersion  string   `yaml:"api_version,omitempty"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     int      `yaml:"timeout"` // seconds
	MaxRetries  int      `yaml:"max_retries"`
}

// Info is the runtime view of a configured model, adding status and
// error tracking on top of the static ModelConfig, matching
// ModelInfo.to_dict() in llm/manager.py.
type Info struct {
	ModelID      string      `json:"model_id"`
	Name         string      `json:"name"`
	Provider     Provider    `json:"provider"`
	Status       Status      `json:"status"`
	LastCheck    *time.Time  `json:"last_check,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Config       ModelConfig `json:"-"`
}
