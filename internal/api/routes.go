package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ajitpratap0/polydiscover/internal/metrics"
)

// setupRoutes configures the discovery status/query surface (spec §6).
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)

		discoveryGroup := v1.Group("/discovery")
		{
			discoveryGroup.POST("/start", s.handleStartDiscovery)
			discoveryGroup.POST("/cancel", s.handleCancelDiscovery)
			discoveryGroup.GET("/status", s.handleGetStatus)
		}

		results := v1.Group("/results")
		{
			results.GET("", s.handleListResults)
			results.GET("/top", s.handleTopUnique)
			results.GET("/stats", s.handleStats)
		}
	}

	s.router.GET("/", s.handleRoot)
}
