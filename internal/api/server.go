// Package api exposes the extraction pipeline and its result store over
// HTTP. The capturing side posts page snapshots to /api/extract; the
// read endpoints serve the accumulated orders and run history.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/orderlens/order-extract-backend/internal/api/dto"
	"github.com/orderlens/order-extract-backend/internal/extract/pipeline"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config      Config
	router      *gin.Engine
	httpServer  *http.Server
	logger      *slog.Logger
	repo        storage.Repository
	pipelineCfg pipeline.Config
}

// NewServer creates a new API server.
func NewServer(cfg Config, pipelineCfg pipeline.Config, repo storage.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config:      cfg,
		router:      router,
		logger:      logger.With(slog.String("system", "api")),
		repo:        repo,
		pipelineCfg: pipelineCfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewHealthResponse())
	})

	api := s.router.Group("/api")
	{
		api.POST("/extract", s.postExtract)
		api.GET("/orders", s.getOrders)
		api.GET("/orders/:number", s.getOrder)
		api.GET("/runs", s.getRuns)
		api.GET("/runs/:id", s.getRun)
		api.GET("/stats", s.getStats)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", slog.String("addr", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying handler for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
