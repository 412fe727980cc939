package llm

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
)

// Token is one incremental piece of a streamed completion.
type Token struct {
	Text string
	Done bool
	Err  error
}

// Capability is the abstract chat-completion surface spec §4 (C1)
// names: a blocking call and a token-streaming call, implemented here
// over a langchaingo llms.Model so any of the four configured
// providers can back it interchangeably.
type Capability interface {
	// Complete performs one blocking round-trip and returns the full
	// response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// StreamTokens performs one streaming round-trip, sending Token
	// values as they arrive and closing the channel when the call
	// finishes (with a final Token{Done: true} or a Token carrying
	// Err on failure).
	StreamTokens(ctx context.Context, systemPrompt, userPrompt string) <-chan Token
}

type capability struct {
	model  llms.Model
	logger *logrus.Logger
}

// NewCapability adapts a langchaingo model into the Capability
// interface.
func NewCapability(model llms.Model, logger *logrus.Logger) Capability {
	return &capability{model: model, logger: logger}
}

func buildMessages(systemPrompt, userPrompt string) []llms.MessageContent {
	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))
	return messages
}

func (c *capability) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	response, err := c.model.GenerateContent(ctx, buildMessages(systemPrompt, userPrompt))
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Content, nil
}

// StreamTokens uses langchaingo's llms.WithStreamingFunc, the
// mechanism the ecosystem exposes for token-by-token delivery, and
// fans it into a channel so the Mode Dispatcher's Direct strategy can
// range over it without blocking on the whole completion.
func (c *capability) StreamTokens(ctx context.Context, systemPrompt, userPrompt string) <-chan Token {
	out := make(chan Token)

	go func() {
		defer close(out)

		streamFunc := llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			select {
			case out <- Token{Text: string(chunk)}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		_, err := c.model.GenerateContent(ctx, buildMessages(systemPrompt, userPrompt), streamFunc)
		if err != nil {
			c.logger.WithError(err).Warn("llm streaming call failed")
			out <- Token{Err: err}
			return
		}
		out <- Token{Done: true}
	}()

	return out
}
