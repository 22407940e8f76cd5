// Package llm abstracts the reasoning services used by the analysis
// pipeline. Provider output is free-form text; callers parse it and
// fall back to deterministic defaults when parsing fails.
package llm

import (
	"context"
	"fmt"
)

// SearchFunc is an evidence-search capability attached to a reasoning
// request. Providers that support tool calling expose it as a tool;
// others inject its results as prompt context.
type SearchFunc func(ctx context.Context, query string) (string, error)

// Request is one reasoning invocation.
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32

	// Search, when non-nil, gives the model an evidence-search tool.
	Search SearchFunc
}

// Provider defines the interface for reasoning services.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Respond produces the model's raw text output for the request.
	Respond(ctx context.Context, req Request) (string, error)
}

// RateLimitError indicates the provider rejected a call due to rate
// limiting. Callers retry these with a bounded backoff.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %s", e.Provider, e.Message)
}

// Config holds reasoning provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for OpenAI/Anthropic.
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for response generation.
	MaxTokens int

	// Temperature for response generation.
	Temperature float32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60,
		MaxTokens: 1500,
	}
}
