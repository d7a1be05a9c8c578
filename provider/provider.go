// Package provider holds the plumbing for runtime-selectable remote
// backends. The transcription and formatting services each define their own
// Provider interface on top of the base one here and pick a backend by name
// from configuration.
package provider

import "context"

// Provider is the contract every backend satisfies regardless of service.
type Provider interface {
	// Name returns the backend's registered name.
	Name() string
	// IsAvailable reports whether the backend can take requests right now.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a backend from its configuration section.
type Factory[T Provider] func(cfg map[string]any) (T, error)
