// Package transcription defines the transcription provider interface and
// common types for interacting with speech-to-text backends.
//
// It follows the provider pattern with a pluggable registry for
// runtime-selectable backends.
//
// # Backends
//
//   - transcription/openai: OpenAI audio transcription API
//   - transcription/whisper: faster-whisper HTTP sidecar
package transcription

import (
	"context"

	"github.com/echoscribe/echoscribe/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	// Failures carry an errors.AppError: a TIMEOUT code when the call
	// exceeded its bound, REMOTE_SERVICE_ERROR otherwise.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// NewRegistry creates a new provider registry for transcription providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
