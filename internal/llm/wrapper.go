package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
)

// CleaningWrapper strips <think>/<reasoning> tags and other formatting
// noise models emit, generalized from the teacher's CleaningLLMWrapper
// (core/llm.go) to be provider-agnostic: the teacher's version assumed
// a ZeroShotReact agent-format response; this one only cleans, leaving
// agent-format concerns to the Thought Engine and Mode Dispatcher.
type CleaningWrapper struct {
	wrapped llms.Model
	logger  *logrus.Logger
}

var (
	thinkTagRegex      = regexp.MustCompile(`(?is)<think>.*?</think>`)
	openThinkTagRegex  = regexp.MustCompile(`(?is)<think>.*`)
	reasoningTagRegex  = regexp.MustCompile(`(?is)<reasoning>.*?</reasoning>`)
	multiNewlineRegex  = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// NewCleaningWrapper wraps an llms.Model with response cleaning.
func NewCleaningWrapper(wrapped llms.Model, logger *logrus.Logger) *CleaningWrapper {
	return &CleaningWrapper{wrapped: wrapped, logger: logger}
}

// Clean removes thinking/reasoning tags and collapses excess blank
// lines. Exported so callers that receive raw provider text outside
// GenerateContent/Call (e.g. a streaming token accumulator) can reuse
// the same cleaning logic.
func (w *CleaningWrapper) Clean(response string) string {
	cleaned := thinkTagRegex.ReplaceAllString(response, "")
	cleaned = openThinkTagRegex.ReplaceAllString(cleaned, "")
	cleaned = reasoningTagRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = multiNewlineRegex.ReplaceAllString(cleaned, "\n\n")
	return cleaned
}

// GenerateContent implements llms.Model.
func (w *CleaningWrapper) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	response, err := w.wrapped.GenerateContent(ctx, messages, options...)
	if err != nil {
		return response, err
	}
	if response == nil {
		return response, nil
	}
	for i := range response.Choices {
		original := response.Choices[i].Content
		cleaned := w.Clean(original)
		response.Choices[i].Content = cleaned
		if len(original) != len(cleaned) {
			w.logger.WithFields(logrus.Fields{
				"originalLength": len(original),
				"cleanedLength":  len(cleaned),
			}).Debug("cleaned llm response content")
		}
	}
	return response, nil
}

// Call implements llms.Model's simple string-based call shape.
func (w *CleaningWrapper) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, w.wrapped, prompt, options...)
	if err != nil {
		return "", fmt.Errorf("cleaning wrapper call: %w", err)
	}
	return w.Clean(response), nil
}
