/*
Package llm implements the LLM Capability (spec §4, C1): a provider-
agnostic blocking and token-streaming chat-completion surface, wrapped
with response cleaning. Provider selection and the cleaning wrapper are
generalized from the teacher's core/server.go switch statement and
core/llm.go CleaningLLMWrapper.
*/
package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"travelagent/internal/modelmanager"
)

// NewModel constructs the langchaingo model implementation for one
// configured model entry, per spec §6's provider enum. Unlike the
// teacher (which only ever builds gemini or ollama), this dispatches
// on ModelConfig.Provider to cover all four spec providers, with
// "openai-compatible" reusing the openai client pointed at a custom
// api_base, the same trick the ecosystem uses for self-hosted and
// third-party OpenAI-protocol endpoints.
func NewModel(cfg modelmanager.ModelConfig, logger *logrus.Logger) (llms.Model, error) {
	entry := logger.WithFields(logrus.Fields{"provider": cfg.Provider, "model": cfg.Model})

	switch cfg.Provider {
	case modelmanager.ProviderOpenAI:
		entry.Info("initializing openai model")
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithToken(cfg.APIKey)}
		if cfg.APIBase != "" {
			opts = append(opts, openai.WithBaseURL(cfg.APIBase))
		}
		return openai.New(opts...)

	case modelmanager.ProviderOpenAICompatible:
		entry.Info("initializing openai-compatible model")
		if cfg.APIBase == "" {
			return nil, fmt.Errorf("provider %q requires api_base", cfg.Provider)
		}
		return openai.New(
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
			openai.WithBaseURL(cfg.APIBase),
		)

	case modelmanager.ProviderAnthropic:
		entry.Info("initializing anthropic model")
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey)}
		if cfg.APIBase != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.APIBase))
		}
		return anthropic.New(opts...)

	case modelmanager.ProviderGoogle:
		entry.Info("initializing google model")
		return googleai.New(
			context.Background(),
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)

	default:
		return nil, fmt.Errorf("unknown provider %q for model %q", cfg.Provider, cfg.ModelID)
	}
}
