// Package oracle is the boundary to the external analysis service. The
// service is treated as an opaque function from (instruction, text) to a
// finding report; everything else in the system consumes it through the
// Client interface.
package oracle

import (
	"context"
	"fmt"
)

// Request carries one chunk submission.
type Request struct {
	Instruction string // fixed review instruction, sent as the system prompt
	Content     string // chunk content, annotated with file headers
	MaxTokens   int
	Temperature float64
}

// Response is the raw oracle output for one chunk.
type Response struct {
	Content    string
	TokensUsed int
}

// Client submits chunks for analysis. Review blocks until a response or a
// terminal failure; transient failures are retried internally with bounded
// backoff before being surfaced.
type Client interface {
	Review(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a client by provider name. The apiKey comes from the
// credential resolution chain; providers that require one fail fast here.
func New(provider, model, apiKey string) (Client, error) {
	switch provider {
	case "gemini", "google":
		return NewGemini(model, apiKey)
	case "anthropic":
		return NewAnthropic(model, apiKey)
	case "openai":
		return NewOpenAI(model, apiKey)
	case "scripted":
		return NewScripted(nil), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// RequiresCredential reports whether the named provider needs an API key.
func RequiresCredential(provider string) bool {
	return provider != "scripted"
}
