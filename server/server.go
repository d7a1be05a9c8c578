// Package server hosts the HTTP API on a Gin engine with the standard
// middleware stack applied at the handler level.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/echoscribe/echoscribe/component"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/server/middleware"
)

// Server is the HTTP server. Middleware wraps the whole engine so the SSE
// stream and multipart uploads share one stack.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
}

// New creates a Server with the middleware stack applied.
func New(cfg Config) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.WithComponent("server")

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())

	// CORS, body limiting, and request logging wrap the engine itself so
	// they run for every route.
	handler := middleware.Chain(
		middleware.CORS(cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(log),
	)(engine)

	// h2c lets the browser multiplex the long-lived SSE stream with API
	// calls over one cleartext connection.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(handler, h2s),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		config: cfg,
		log:    log,
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Name implements component.Component.
func (s *Server) Name() string { return "server" }

// Start binds the port and serves in the background. It returns once the
// listener is bound, so a nil error means the port is ready.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("http server started", logger.Fields("addr", s.httpServer.Addr))
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// Health implements component.Component.
func (s *Server) Health(ctx context.Context) component.Health {
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

var _ component.Component = (*Server)(nil)
