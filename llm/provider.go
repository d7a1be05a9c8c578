// Package llm defines the provider interface and common types for the remote
// text-formatting service.
//
// # Backends
//
//   - llm/openai: OpenAI chat completions
//   - llm/ollama: local Ollama server
package llm

import (
	"context"

	"github.com/echoscribe/echoscribe/provider"
)

// Provider is the interface that LLM backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	// Failures carry an errors.AppError: a TIMEOUT code when the call
	// exceeded its bound, REMOTE_SERVICE_ERROR otherwise.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// NewRegistry creates a new provider registry for LLM providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
