// Package http exposes note taking and question answering over a JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	version    string
	logger     *slog.Logger

	// capabilities is reported by /health; may be nil
	capabilities *domain.RuntimeConfig

	// Services
	ingestionService driving.IngestionService
	qaService        driving.QAService
	paperService     driving.PaperService

	// Infrastructure checked by /ready; entries may be nil
	dependencies map[string]Pinger
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// RequestTimeout bounds every request, ingestion included
	RequestTimeout time.Duration

	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string

	// Capabilities reports which model services are configured. Optional.
	Capabilities *domain.RuntimeConfig

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		RequestTimeout: 60 * time.Second,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestionService driving.IngestionService,
	qaService driving.QAService,
	paperService driving.PaperService,
	dependencies map[string]Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}

	s := &Server{
		router:           chi.NewRouter(),
		version:          cfg.Version,
		logger:           logger,
		capabilities:     cfg.Capabilities,
		ingestionService: ingestionService,
		qaService:        qaService,
		paperService:     paperService,
		dependencies:     dependencies,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg)
	return s
}

// setupRoutes configures middleware and routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(NewLoggingMiddleware(s.logger).Handler)
	s.router.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		s.router.Use(NewCORSMiddleware(cfg.AllowedOrigins).Handler)
	}
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))

	// Health endpoints
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/version", s.handleVersion)
	s.router.Get("/swagger/doc.json", s.handleSwaggerDoc)

	// Papers
	s.router.Post("/take_notes", s.handleTakeNotes)
	s.router.Post("/qa", s.handleQA)
	s.router.Get("/papers", s.handleGetPaper)
	s.router.Get("/papers/history", s.handleHistory)
}

// Handler returns the routed handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr, "version", s.version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			// Stopped through Stop
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
