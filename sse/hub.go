// Package sse streams transcription progress to the browser over
// Server-Sent Events. Clients subscribe to every recording or to one; the
// hub fans persisted pipeline state changes out to them.
package sse

import (
	"encoding/json"
	"sync"

	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/pipeline"
)

// Client is one connected SSE stream.
type Client struct {
	id          string
	recordingID int64 // 0 subscribes to all recordings
	events      chan []byte
}

// NewClient creates a client. recordingID 0 subscribes to every recording.
func NewClient(id string, recordingID int64) *Client {
	return &Client{
		id:          id,
		recordingID: recordingID,
		events:      make(chan []byte, 64),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id }

// Events returns the channel the hub delivers encoded events on.
func (c *Client) Events() <-chan []byte { return c.events }

// send delivers data without blocking. A full channel means the client is
// not draining; the event is dropped and the next one carries fresh state.
func (c *Client) send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	close(c.events)
}

// Hub fans progress events out to connected clients. It satisfies
// pipeline.Publisher, so the pipeline publishes straight into it.
type Hub struct {
	log        *logger.Logger
	register   chan *Client
	unregister chan *Client
	broadcast  chan pipeline.ProgressEvent
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]*Client
	stopped bool
}

// NewHub creates a Hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	return &Hub{
		log:        logger.WithComponent("sse"),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan pipeline.ProgressEvent, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
	}
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.close()
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", client.id))

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

// Stop shuts the hub down and disconnects all clients. Safe to call twice.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

// Publish queues a progress event for delivery. It never blocks the
// pipeline: when the hub's queue is full the event is dropped.
func (h *Hub) Publish(ev pipeline.ProgressEvent) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("event queue full, dropping progress event", logger.Fields(
			logger.FieldRecordingID, ev.RecordingID,
		))
	}
}

// Register adds a client to the hub. After Stop it is a no-op: a stopped
// hub has no event loop left to receive the client.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client and closes its event channel. After Stop it
// is a no-op; closeAll has already disconnected every client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(ev pipeline.ProgressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode progress event", logger.ErrorFields("marshal", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.recordingID != 0 && client.recordingID != ev.RecordingID {
			continue
		}
		if !client.send(data) {
			h.log.Warn("client too slow, dropping event", logger.Fields("client_id", client.id))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.close()
		delete(h.clients, id)
	}
}

var _ pipeline.Publisher = (*Hub)(nil)
