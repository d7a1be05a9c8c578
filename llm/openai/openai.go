// Package openai implements llm.Provider on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"

	goopenai "github.com/sashabaranov/go-openai"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/llm"
	"github.com/echoscribe/echoscribe/provider"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultModel = "gpt-4o-mini"
)

// Config holds configuration for the OpenAI LLM provider.
type Config struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url"`
	Model   string `json:"model" yaml:"model"`
}

// Provider implements llm.Provider using the OpenAI API.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// NewProvider creates a new OpenAI LLM provider.
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
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
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

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("format").WithCause(err)
		}
		return nil, apperrors.RemoteService("formatting service", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.RemoteService("formatting service", errors.New("empty completion response"))
	}

	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
