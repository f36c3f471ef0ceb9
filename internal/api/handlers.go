package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/polydiscover/internal/discovery"
	"github.com/ajitpratap0/polydiscover/internal/store"
	"github.com/ajitpratap0/polydiscover/internal/validation"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "polydiscover", "status": "ok"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// startDiscoveryRequest is the wire shape of spec §4.3's start(...) call.
type startDiscoveryRequest struct {
	Symbols        []string `json:"symbols" binding:"required,min=1"`
	Days           int      `json:"days" binding:"required"`
	InitialCapital float64  `json:"initial_capital" binding:"required,gt=0"`
	Sizing         struct {
		Mode       string  `json:"mode" binding:"required"`
		Amount     float64 `json:"amount"`
		Fraction   float64 `json:"fraction"`
		Base       float64 `json:"base"`
		Multiplier float64 `json:"multiplier"`
	} `json:"sizing" binding:"required"`
}

// handleStartDiscovery starts the discovery loop (idempotent: a run
// already in progress keeps its existing handle, spec §4.3).
//
//	@Summary	Start a discovery run
//	@Router		/api/v1/discovery/start [post]
func (s *Server) handleStartDiscovery(c *gin.Context) {
	var req startDiscoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	v := validation.NewDiscoveryRequestValidator()
	v.ValidateSymbols(req.Symbols)
	v.ValidateDays(req.Days)
	v.ValidateInitialCapital(req.InitialCapital)
	v.ValidateSizingMode(req.Sizing.Mode)
	if v.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discovery request", "details": v.Errors()})
		return
	}

	var sizing backtest.SizingMode
	switch req.Sizing.Mode {
	case "fixed":
		sizing = backtest.FixedSizing(decimal.NewFromFloat(req.Sizing.Amount))
	case "kelly":
		sizing = backtest.KellySizing(req.Sizing.Fraction)
	case "confidence_scaled", "confidence":
		sizing = backtest.ConfidenceScaledSizing(req.Sizing.Base, req.Sizing.Multiplier)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sizing mode", "mode": req.Sizing.Mode})
		return
	}

	handle := s.agent.Start(discovery.StartRequest{
		Symbols:        req.Symbols,
		Days:           req.Days,
		Sizing:         sizing,
		InitialCapital: decimal.NewFromFloat(req.InitialCapital),
	})

	c.JSON(http.StatusAccepted, gin.H{"handle": handle})
}

// handleCancelDiscovery cooperatively cancels the running loop and
// blocks until it has left its current cycle (spec §5).
//
//	@Summary	Cancel the running discovery loop
//	@Router		/api/v1/discovery/cancel [post]
func (s *Server) handleCancelDiscovery(c *gin.Context) {
	s.agent.Cancel()
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// handleGetStatus reports the agent's current progress snapshot,
// including its top-30 results (spec §4.3's status()).
//
//	@Summary	Get discovery progress
//	@Router		/api/v1/discovery/status [get]
func (s *Server) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.agent.Status())
}

// handleListResults paginates the result store with optional filters
// and sort field (spec §4.4's query(...)).
//
//	@Summary	Query persisted backtest results
//	@Router		/api/v1/results [get]
func (s *Server) handleListResults(c *gin.Context) {
	filters := store.Filters{}
	if tag := c.Query("strategy_tag"); tag != "" {
		filters.StrategyTag = &tag
	}
	if symbol := c.Query("symbol"); symbol != "" {
		filters.Symbol = &symbol
	}
	if raw := c.Query("min_win_rate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_win_rate"})
			return
		}
		filters.MinWinRate = &v
	}

	sortBy := store.SortField(c.DefaultQuery("sort_by", string(store.SortCompositeScore)))
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	results, err := s.store.Paginate(c.Request.Context(), filters, sortBy, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to paginate results")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handleTopUnique returns the best result per strategy (spec §4.4's
// top_unique(...)).
//
//	@Summary	Top result per strategy
//	@Router		/api/v1/results/top [get]
func (s *Server) handleTopUnique(c *gin.Context) {
	sortBy := store.SortField(c.DefaultQuery("sort_by", string(store.SortCompositeScore)))
	limit := queryInt(c, "limit", 20)

	results, err := s.store.TopUnique(c.Request.Context(), limit, sortBy)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute top-unique results")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handleStats returns store-wide aggregates (spec §4.4's stats()).
//
//	@Summary	Result store statistics
//	@Router		/api/v1/results/stats [get]
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.GetStats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute result store stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
