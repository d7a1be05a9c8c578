// Package component manages the lifecycle of the application's long-lived
// pieces: the store, the SSE hub, and the HTTP server. Components start in
// registration order and stop in reverse.
package component

import "context"

// HealthStatus is the health state of one component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's self-reported health.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of the application.
type Component interface {
	// Name returns the component's unique registration name.
	Name() string

	// Start initializes the component.
	Start(ctx context.Context) error

	// Stop releases the component's resources.
	Stop(ctx context.Context) error

	// Health reports the component's current health.
	Health(ctx context.Context) Health
}
