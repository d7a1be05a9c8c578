package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/echoscribe/echoscribe/logger"
)

// ServeSSE streams the hub's events to one HTTP client until it disconnects.
// recordingID 0 subscribes to every recording.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, recordingID int64) {
	log := logger.WithComponent("sse")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections are long-lived; the server's write timeout must not
	// cut them off.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("could not disable write deadline", logger.Fields(
			"client_id", clientID,
			logger.FieldError, err.Error(),
		))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, recordingID)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = fmt.Fprintf(w, "event: %s\ndata: {\"client_id\":%q}\n\n", EventTypeConnected, clientID)
	flusher.Flush()

	// Keep-alives must come more often than intermediary idle timeouts.
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("client_id", clientID))
			return

		case event, ok := <-client.Events():
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventTypeProgress, event)
			flusher.Flush()

		case <-keepAlive.C:
			// SSE comment line, ignored by EventSource.
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}
