package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/echoscribe/echoscribe/pipeline"
	"github.com/echoscribe/echoscribe/store"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, c *Client) pipeline.ProgressEvent {
	t.Helper()
	select {
	case data := <-c.Events():
		var ev pipeline.ProgressEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return pipeline.ProgressEvent{}
	}
}

func TestHub_BroadcastToAllSubscribers(t *testing.T) {
	hub := runHub(t)

	a := NewClient("a", 0)
	b := NewClient("b", 0)
	hub.Register(a)
	hub.Register(b)

	hub.Publish(pipeline.ProgressEvent{
		RecordingID: 7,
		Status:      store.StatusTranscribing,
		Progress:    42,
	})

	for _, c := range []*Client{a, b} {
		ev := receive(t, c)
		if ev.RecordingID != 7 || ev.Progress != 42 {
			t.Errorf("client %s: expected recording 7 at 42, got %d at %d",
				c.ID(), ev.RecordingID, ev.Progress)
		}
	}
}

func TestHub_RecordingScopedSubscription(t *testing.T) {
	hub := runHub(t)

	scoped := NewClient("scoped", 7)
	hub.Register(scoped)

	hub.Publish(pipeline.ProgressEvent{RecordingID: 8, Progress: 10})
	hub.Publish(pipeline.ProgressEvent{RecordingID: 7, Progress: 20})

	ev := receive(t, scoped)
	if ev.RecordingID != 7 {
		t.Errorf("expected only recording 7 events, got recording %d", ev.RecordingID)
	}

	select {
	case data := <-scoped.Events():
		t.Errorf("expected no further events, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := runHub(t)

	c := NewClient("c", 0)
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.Events():
		if ok {
			t.Error("expected closed channel after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("expected 0 clients, got %d", n)
	}
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := NewClient("c", 0)
	hub.Register(c)
	hub.Stop()

	select {
	case _, ok := <-c.Events():
		if ok {
			t.Error("expected closed channel after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown")
	}

	// Idempotent.
	hub.Stop()
}

func TestClient_SlowConsumerDoesNotBlock(t *testing.T) {
	c := NewClient("slow", 0)
	for i := 0; i < 100; i++ {
		c.send([]byte("x"))
	}
	// The buffered channel is full; send must return immediately.
	done := make(chan struct{})
	go func() {
		c.send([]byte("overflow"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full client channel")
	}
}

func TestHub_UnregisterAfterStopReturns(t *testing.T) {
	hub := NewHub()
	loopDone := make(chan struct{})
	go func() {
		hub.Run()
		close(loopDone)
	}()

	c := NewClient("a", 0)
	hub.Register(c)

	hub.Stop()
	select {
	case <-loopDone:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the event loop to stop")
	}

	// With the event loop gone there is no receiver; Unregister must not
	// hang the connection handler that deferred it.
	returned := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Stop")
	}

	// Register after Stop is a no-op rather than a deadlock.
	done := make(chan struct{})
	go func() {
		hub.Register(NewClient("late", 0))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register blocked after Stop")
	}
}
