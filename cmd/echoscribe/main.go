// Command echoscribe runs the local meeting transcription service: an HTTP
// API over a SQLite store that captures browser audio, transcribes it in
// resumable pieces against a remote speech-to-text backend, and formats the
// result into meeting notes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echoscribe/echoscribe/capture"
	"github.com/echoscribe/echoscribe/component"
	"github.com/echoscribe/echoscribe/config"
	"github.com/echoscribe/echoscribe/llm"
	llmollama "github.com/echoscribe/echoscribe/llm/ollama"
	llmopenai "github.com/echoscribe/echoscribe/llm/openai"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/notes"
	"github.com/echoscribe/echoscribe/observability"
	"github.com/echoscribe/echoscribe/pipeline"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/server/endpoint"
	"github.com/echoscribe/echoscribe/server/handler"
	"github.com/echoscribe/echoscribe/sse"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/transcription"
	txopenai "github.com/echoscribe/echoscribe/transcription/openai"
	txwhisper "github.com/echoscribe/echoscribe/transcription/whisper"
	"github.com/echoscribe/echoscribe/version"
)

const gracefulTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "echoscribe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "path to config file")
		envFile     = flag.String("env-file", "", "path to .env file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetShortVersion())
		return nil
	}

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("main")
	log.Info("starting", logger.Fields(
		"version", version.GetShortVersion(),
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		cfg.Observability.ServiceVersion = version.GetShortVersion()
		tp, err := observability.InitTracer(ctx, cfg.Observability)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		mp, err := observability.InitMeter(ctx, cfg.Observability)
		if err != nil {
			return fmt.Errorf("init meter: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("tracer shutdown", logger.Fields(logger.FieldError, err.Error()))
			}
			if err := mp.Shutdown(shutdownCtx); err != nil {
				log.Warn("meter shutdown", logger.Fields(logger.FieldError, err.Error()))
			}
		}()
		if metrics, err = observability.NewMetrics(observability.Meter("echoscribe")); err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	transcriber, err := buildTranscriber(cfg)
	if err != nil {
		st.Close()
		return err
	}
	llmProvider, err := buildLLM(cfg)
	if err != nil {
		st.Close()
		return err
	}

	hub := sse.NewHub()
	pl := pipeline.New(st, transcriber,
		pipeline.WithPublisher(hub),
		pipeline.WithMetrics(metrics),
		pipeline.WithLimits(cfg.Pipeline.Limits()),
	)

	srv := server.New(cfg.Server)
	h := handler.New(handler.Deps{
		Store:     st,
		Pipeline:  pl,
		Formatter: notes.NewFormatter(llmProvider, cfg.LLM.Timeout),
		Captures:  capture.NewManager(st),
		Hub:       hub,
		LLMModel:  cfg.LLM.Model,
	})
	h.RegisterRoutes(srv.Engine())

	registry := component.NewRegistry()
	for _, c := range []component.Component{
		&storeComponent{st: st},
		&hubComponent{hub: hub},
		srv,
	} {
		if err := registry.Register(c); err != nil {
			st.Close()
			return err
		}
	}

	srv.Engine().GET("/health", endpoint.Health(cfg.Name, registry.HealthAll))
	srv.Engine().GET("/version", endpoint.Version())

	if err := registry.StartAll(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()
		registry.StopAll(stopCtx)
		return fmt.Errorf("start: %w", err)
	}

	log.Info("ready", logger.Fields(
		"addr", srv.Addr(),
		"transcription_backend", cfg.Transcription.Backend,
		"llm_backend", cfg.LLM.Backend,
	))

	<-ctx.Done()
	log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	if err := registry.StopAll(stopCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildTranscriber constructs the configured speech-to-text backend and wraps
// it in the fast/strong escalation ladder.
func buildTranscriber(cfg *config.App) (*transcription.Escalator, error) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(txopenai.ProviderName, txopenai.Factory())
	reg.RegisterFactory(txwhisper.ProviderName, txwhisper.Factory())

	p, err := reg.Create(cfg.Transcription.Backend, map[string]any{
		"api_key":  cfg.Transcription.APIKey,
		"base_url": cfg.Transcription.BaseURL,
		"url":      cfg.Transcription.WhisperURL,
		"model":    cfg.Transcription.FastModel,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription backend: %w", err)
	}

	return transcription.NewEscalator(p,
		transcription.Tier{Model: cfg.Transcription.FastModel, Timeout: cfg.Transcription.FastTimeout},
		transcription.Tier{Model: cfg.Transcription.StrongModel, Timeout: cfg.Transcription.StrongTimeout},
	), nil
}

// buildLLM constructs the configured note-formatting backend.
func buildLLM(cfg *config.App) (llm.Provider, error) {
	reg := llm.NewRegistry()
	reg.RegisterFactory(llmopenai.ProviderName, llmopenai.Factory())
	reg.RegisterFactory(llmollama.ProviderName, llmollama.Factory())

	p, err := reg.Create(cfg.LLM.Backend, map[string]any{
		"api_key":  cfg.LLM.APIKey,
		"base_url": cfg.LLM.BaseURL,
		"model":    cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("llm backend: %w", err)
	}
	return p, nil
}
