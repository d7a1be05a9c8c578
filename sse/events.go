package sse

// SSE event names used on the wire.
const (
	// EventTypeConnected is sent once when a client connects.
	EventTypeConnected = "connected"

	// EventTypeProgress carries one pipeline.ProgressEvent as JSON.
	EventTypeProgress = "progress"
)
