// Package http provides the API server, its middleware, and the metrics server.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	anonymizerHTTP "github.com/sivd/piivault/internal/anonymizer/http"
	"github.com/sivd/piivault/internal/config"
)

// ReadinessChecker reports whether the vault storage backend is reachable.
type ReadinessChecker func(ctx context.Context) error

// Server represents the API HTTP server.
type Server struct {
	config            *config.Config
	router            *gin.Engine
	server            *http.Server
	logger            *slog.Logger
	handler           *anonymizerHTTP.AnonymizerHandler
	ready             ReadinessChecker
	metricsMiddleware gin.HandlerFunc
}

// NewServer creates the API server with all routes and middleware registered.
// The readiness checker may be nil, in which case /ready always reports not ready.
// The metrics middleware may be nil when metrics are disabled.
func NewServer(
	cfg *config.Config,
	handler *anonymizerHTTP.AnonymizerHandler,
	ready ReadinessChecker,
	metricsMiddleware gin.HandlerFunc,
	logger *slog.Logger,
) *Server {
	s := &Server{
		config:            cfg,
		logger:            logger,
		handler:           handler,
		ready:             ready,
		metricsMiddleware: metricsMiddleware,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	s.router = s.setupRouter()

	return s
}

// setupRouter builds the Gin engine with middleware and routes.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.metricsMiddleware != nil {
		router.Use(s.metricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if s.config.APIKey != "" {
		v1.Use(APIKeyMiddleware(s.config.APIKey, s.logger))
	}
	if s.config.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(
			s.config.RateLimitRequestsPerSec,
			s.config.RateLimitBurst,
			s.logger,
		))
	}

	v1.POST("/anonymize", s.handler.AnonymizeHandler)
	v1.POST("/deanonymize", s.handler.DeanonymizeHandler)
	v1.POST("/anonymize-object", s.handler.AnonymizeObjectHandler)
	v1.POST("/deanonymize-object", s.handler.DeanonymizeObjectHandler)
	v1.GET("/vault/entries", s.handler.ListVaultEntriesHandler)

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the vault storage backend can serve requests.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.ready == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"storage": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"storage": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"storage": "ok"},
	})
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
