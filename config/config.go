// Package config defines echoscribe's configuration tree and its loader.
// Values come from config.yml, a .env file, and the process environment, in
// increasing order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/observability"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/split"
)

// App is the full application configuration.
type App struct {
	Name          string               `yaml:"name" mapstructure:"name"`
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Store         StoreConfig          `yaml:"store" mapstructure:"store"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
	LLM           LLMConfig            `yaml:"llm" mapstructure:"llm"`
	Pipeline      PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// TranscriptionConfig configures the transcription backend and its model
// tiers. The fast model handles every piece first; the strong model takes
// over after a timeout.
type TranscriptionConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"` // "openai" or "whisper"
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	WhisperURL    string        `yaml:"whisper_url" mapstructure:"whisper_url"`
	FastModel     string        `yaml:"fast_model" mapstructure:"fast_model"`
	StrongModel   string        `yaml:"strong_model" mapstructure:"strong_model"`
	FastTimeout   time.Duration `yaml:"fast_timeout" mapstructure:"fast_timeout"`
	StrongTimeout time.Duration `yaml:"strong_timeout" mapstructure:"strong_timeout"`
}

// LLMConfig configures the notes-formatting backend.
type LLMConfig struct {
	Backend string        `yaml:"backend" mapstructure:"backend"` // "openai" or "ollama"
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PipelineConfig bounds a single transcription submission.
type PipelineConfig struct {
	MaxPieceSize int64 `yaml:"max_piece_size" mapstructure:"max_piece_size"`
	HeaderSize   int64 `yaml:"header_size" mapstructure:"header_size"`
}

// Limits converts the configured bounds to split limits.
func (c PipelineConfig) Limits() split.Limits {
	return split.Limits{MaxPieceSize: c.MaxPieceSize, HeaderSize: c.HeaderSize}
}

// ApplyDefaults fills unset fields across the whole tree.
func (c *App) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "echoscribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()

	if c.Store.Path == "" {
		c.Store.Path = "echoscribe.db"
	}

	if c.Transcription.Backend == "" {
		c.Transcription.Backend = "openai"
	}
	if c.Transcription.FastModel == "" {
		c.Transcription.FastModel = "gpt-4o-mini-transcribe"
	}
	if c.Transcription.StrongModel == "" {
		c.Transcription.StrongModel = "gpt-4o-transcribe"
	}
	if c.Transcription.FastTimeout == 0 {
		c.Transcription.FastTimeout = 2 * time.Minute
	}
	if c.Transcription.StrongTimeout == 0 {
		c.Transcription.StrongTimeout = 5 * time.Minute
	}
	if c.Transcription.WhisperURL == "" {
		c.Transcription.WhisperURL = "http://localhost:9000"
	}

	if c.LLM.Backend == "" {
		c.LLM.Backend = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 2 * time.Minute
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = c.Transcription.APIKey
	}

	if c.Pipeline.MaxPieceSize == 0 {
		c.Pipeline.MaxPieceSize = split.DefaultMaxPieceSize
	}
	if c.Pipeline.HeaderSize == 0 {
		c.Pipeline.HeaderSize = split.DefaultHeaderSize
	}
}

// Validate checks the tree for invalid values.
func (c *App) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}

	switch c.Transcription.Backend {
	case "openai":
		if c.Transcription.APIKey == "" {
			return fmt.Errorf("transcription.api_key is required for the openai backend")
		}
	case "whisper":
	default:
		return fmt.Errorf("transcription.backend must be openai or whisper (got: %s)", c.Transcription.Backend)
	}

	switch c.LLM.Backend {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for the openai backend")
		}
	case "ollama":
	default:
		return fmt.Errorf("llm.backend must be openai or ollama (got: %s)", c.LLM.Backend)
	}

	if c.Pipeline.MaxPieceSize <= 0 {
		return fmt.Errorf("pipeline.max_piece_size must be positive (got: %d)", c.Pipeline.MaxPieceSize)
	}
	if c.Pipeline.HeaderSize < 0 {
		return fmt.Errorf("pipeline.header_size must be non-negative (got: %d)", c.Pipeline.HeaderSize)
	}
	if c.Pipeline.HeaderSize >= c.Pipeline.MaxPieceSize {
		return fmt.Errorf("pipeline.header_size (%d) must be smaller than max_piece_size (%d)",
			c.Pipeline.HeaderSize, c.Pipeline.MaxPieceSize)
	}
	return nil
}
