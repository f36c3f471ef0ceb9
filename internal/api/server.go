// Package api exposes the discovery agent's status/query surface over
// HTTP: start/cancel a run, poll its progress, and browse persisted
// backtest results.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/polydiscover/internal/discovery"
	"github.com/ajitpratap0/polydiscover/internal/metrics"
	"github.com/ajitpratap0/polydiscover/internal/store"
)

// Server is the trimmed REST surface over a single discovery.Agent and
// its result store.
type Server struct {
	router *gin.Engine
	agent  *discovery.Agent
	store  *store.DB
	addr   string
	server *http.Server
}

// Config contains server construction settings.
type Config struct {
	Host  string
	Port  int
	Agent *discovery.Agent
	Store *store.DB
}

// NewServer creates a new API server bound to agent and store.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		router: router,
		agent:  cfg.Agent,
		store:  cfg.Store,
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	s.setupRoutes()
	return s
}

// Start runs the HTTP server until it is stopped or fails.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("starting discovery API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("stopping discovery API server")
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
	}
	return nil
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logEvent := log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if len(c.Errors) > 0 {
			logEvent.Str("errors", c.Errors.String())
		}
		logEvent.Msg("API request")
	}
}
