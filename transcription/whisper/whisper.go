// Package whisper implements transcription.Provider against a faster-whisper
// HTTP sidecar.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/provider"
	"github.com/echoscribe/echoscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL   = "http://localhost:8387"
	defaultWhisperModel = "base"
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL      string `json:"url" yaml:"url"`
	Model    string `json:"model" yaml:"model"`
	Language string `json:"language,omitempty" yaml:"language"`
}

// Provider implements transcription.Provider using a faster-whisper HTTP
// sidecar. Call timeouts come from the request context; the client itself has
// no timeout so the escalation tiers stay in control.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Factory returns a provider.Factory that creates Whisper Provider instances
// from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		return NewProvider(wc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe sends one audio payload to the Whisper sidecar and returns the
// transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", transcription.FileNameFor(req.MimeType))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}

	fields := map[string]string{
		"model":  model,
		"prompt": req.Prompt,
	}
	if p.cfg.Language != "" {
		fields["language"] = p.cfg.Language
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("transcribe").WithCause(err)
		}
		return nil, apperrors.RemoteService("transcription service", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, apperrors.RemoteService("transcription service",
			fmt.Errorf("whisper sidecar returned %d: %s", httpResp.StatusCode, payload))
	}

	var decoded whisperResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.RemoteService("transcription service", fmt.Errorf("decode response: %w", err))
	}

	return &transcription.Response{
		Text:  strings.TrimSpace(decoded.Text),
		Model: model,
	}, nil
}
