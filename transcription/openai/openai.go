// Package openai implements transcription.Provider on the OpenAI audio
// transcription API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/provider"
	"github.com/echoscribe/echoscribe/transcription"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultModel = "gpt-4o-mini-transcribe"
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url"`
	Model   string `json:"model" yaml:"model"`
}

// Provider implements transcription.Provider using the OpenAI API.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		cfg:    cfg,
		client: goopenai.NewClientWithConfig(clientCfg),
	}
}

// Factory returns a provider.Factory that creates OpenAI Provider instances
// from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		return NewProvider(oc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the API is reachable with the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Transcribe sends one audio payload to the OpenAI transcription endpoint.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    model,
		FilePath: transcription.FileNameFor(req.MimeType),
		Reader:   bytes.NewReader(req.Audio),
		Prompt:   req.Prompt,
	})
	if err != nil {
		return nil, mapError(ctx, err)
	}

	return &transcription.Response{
		Text:  strings.TrimSpace(resp.Text),
		Model: model,
	}, nil
}

func mapError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("transcribe").WithCause(err)
	}
	return apperrors.RemoteService("transcription service", err)
}
