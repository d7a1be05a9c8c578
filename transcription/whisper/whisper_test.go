package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/transcription"
)

func TestTranscribe(t *testing.T) {
	var gotModel, gotPrompt string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("expected /transcribe, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotPrompt = r.FormValue("prompt")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		buf := make([]byte, 16)
		n, _ := file.Read(buf)
		gotAudio = buf[:n]

		json.NewEncoder(w).Encode(map[string]string{"text": "  hello world  "})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	resp, err := p.Transcribe(context.Background(), transcription.Request{
		Audio:    []byte("audio"),
		MimeType: "audio/webm",
		Prompt:   "Weekly sync.",
		Model:    "small",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello world" {
		t.Errorf("expected trimmed text, got %q", resp.Text)
	}
	if resp.Model != "small" {
		t.Errorf("expected request model echoed, got %q", resp.Model)
	}
	if gotModel != "small" {
		t.Errorf("expected model field sent, got %q", gotModel)
	}
	if gotPrompt != "Weekly sync." {
		t.Errorf("expected prompt field sent, got %q", gotPrompt)
	}
	if string(gotAudio) != "audio" {
		t.Errorf("expected audio bytes forwarded, got %q", gotAudio)
	}
}

func TestTranscribe_DefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("expected default model, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if _, err := p.Transcribe(context.Background(), transcription.Request{Audio: []byte("a")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranscribe_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{Audio: []byte("a")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeRemoteService) {
		t.Errorf("expected remote service error, got %v", err)
	}
	if apperrors.IsTimeout(err) {
		t.Error("sidecar failure must not classify as timeout")
	}
}

func TestTranscribe_DeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Transcribe(ctx, transcription.Request{Audio: []byte("a")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsTimeout(err) {
		t.Errorf("expected timeout classification, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected unavailable after shutdown")
	}
}
