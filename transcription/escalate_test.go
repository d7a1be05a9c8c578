package transcription

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// tierRecorder fails or hangs per model name and records the models it saw.
type tierRecorder struct {
	models   []string
	failWith map[string]error
	hang     map[string]bool
}

func (f *tierRecorder) Name() string                       { return "recorder" }
func (f *tierRecorder) IsAvailable(_ context.Context) bool { return true }

func (f *tierRecorder) Transcribe(ctx context.Context, req Request) (*Response, error) {
	f.models = append(f.models, req.Model)
	if f.hang[req.Model] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.failWith[req.Model]; err != nil {
		return nil, err
	}
	return &Response{Text: "ok from " + req.Model}, nil
}

func testTiers() (Tier, Tier) {
	fast := Tier{Model: "fast", Timeout: 20 * time.Millisecond}
	strong := Tier{Model: "strong", Timeout: 200 * time.Millisecond}
	return fast, strong
}

func TestEscalator_FastTierSucceeds(t *testing.T) {
	p := &tierRecorder{}
	fast, strong := testTiers()
	e := NewEscalator(p, fast, strong)

	resp, err := e.Transcribe(context.Background(), Request{Audio: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok from fast" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Model != "fast" {
		t.Errorf("expected model fast, got %s", resp.Model)
	}
	if len(p.models) != 1 {
		t.Errorf("expected single call, got %v", p.models)
	}
}

func TestEscalator_TimeoutEscalatesOnce(t *testing.T) {
	p := &tierRecorder{hang: map[string]bool{"fast": true}}
	fast, strong := testTiers()
	e := NewEscalator(p, fast, strong)

	resp, err := e.Transcribe(context.Background(), Request{Audio: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok from strong" {
		t.Errorf("expected strong-tier result, got %q", resp.Text)
	}
	want := []string{"fast", "strong"}
	if len(p.models) != 2 || p.models[0] != want[0] || p.models[1] != want[1] {
		t.Errorf("expected calls %v, got %v", want, p.models)
	}
}

func TestEscalator_BothTiersTimeOut(t *testing.T) {
	p := &tierRecorder{hang: map[string]bool{"fast": true, "strong": true}}
	fast, strong := testTiers()
	strong.Timeout = 20 * time.Millisecond
	e := NewEscalator(p, fast, strong)

	_, err := e.Transcribe(context.Background(), Request{Audio: []byte{1}})
	if !apperrors.IsTimeout(err) {
		t.Errorf("expected final timeout error, got %v", err)
	}
	if len(p.models) != 2 {
		t.Errorf("expected exactly 2 attempts, got %v", p.models)
	}
}

func TestEscalator_RemoteErrorDoesNotEscalate(t *testing.T) {
	remoteErr := apperrors.RemoteService("transcription service", nil)
	p := &tierRecorder{failWith: map[string]error{"fast": remoteErr}}
	fast, strong := testTiers()
	e := NewEscalator(p, fast, strong)

	_, err := e.Transcribe(context.Background(), Request{Audio: []byte{1}})
	if !apperrors.IsCode(err, apperrors.ErrCodeRemoteService) {
		t.Errorf("expected remote-service error, got %v", err)
	}
	if len(p.models) != 1 {
		t.Errorf("non-timeout failure must not be retried, got calls %v", p.models)
	}
}
