// Package server exposes treeline's state over a local HTTP API: worktrees,
// run history, refresh, and a websocket stream of run lifecycle events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"treeline/internal/config"
	"treeline/internal/constants"
	"treeline/internal/db"
	"treeline/internal/logger"
	"treeline/internal/operations"
)

// Config holds the server configuration
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            constants.DefaultServerPort,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the treeline HTTP server
type Server struct {
	config      *Config
	configMgr   *config.Manager
	echo        *echo.Echo
	runner      *operations.Runner
	worktreeOps *operations.WorktreeOps
	runRepo     *db.RunRepository
	database    *db.DB
	hub         *Hub
	startTime   time.Time
}

// New creates a new server instance
func New(cfg *Config, configMgr *config.Manager, runner *operations.Runner, worktreeOps *operations.WorktreeOps, runRepo *db.RunRepository, database *db.DB, hub *Hub) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	return &Server{
		config:      cfg,
		configMgr:   configMgr,
		echo:        e,
		runner:      runner,
		worktreeOps: worktreeOps,
		runRepo:     runRepo,
		database:    database,
		hub:         hub,
		startTime:   time.Now(),
	}
}

// Echo returns the Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Handler returns the HTTP handler with middleware and routes installed
func (s *Server) Handler() http.Handler {
	s.setupMiddleware()
	s.setupRoutes()
	return s.echo
}

// Start starts the server and blocks until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	logger.WithField("addr", addr).Info("Starting server")

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(logger.RequestLogger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/worktrees", s.handleListWorktrees)
	api.GET("/runs", s.handleListRuns)
	api.POST("/refresh", s.handleRefresh)
	api.GET("/ws", s.handleWebSocket)
}
