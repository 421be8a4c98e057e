package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/cryptoverse/internal/api"
	"github.com/rickgao/cryptoverse/internal/chat"
	"github.com/rickgao/cryptoverse/internal/display"
	"github.com/rickgao/cryptoverse/internal/market"
	"github.com/rickgao/cryptoverse/internal/version"
)

// handleHealth handles GET /health.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	components := gin.H{"ws_clients": s.hub.Clients()}

	if s.deps.Market != nil {
		st := s.deps.Market.State()
		components["market"] = gin.H{
			"phase":      st.Phase,
			"coins":      len(st.Snapshot.TopCoins),
			"updated_at": st.UpdatedAt,
		}
		if st.Phase == market.PhaseError {
			status = "degraded"
		}
	}
	if s.deps.News != nil {
		v := s.deps.News.Current()
		components["news"] = gin.H{
			"tier":  v.Tier,
			"items": v.Total,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"version":    version.Get(),
		"components": components,
	})
}

// handleMarket handles GET /api/market.
func (s *Server) handleMarket(c *gin.Context) {
	c.JSON(http.StatusOK, display.FromState(s.deps.Market.State()))
}

// handleMarketRefresh handles POST /api/market/refresh.
func (s *Server) handleMarketRefresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	c.JSON(http.StatusOK, display.FromState(s.deps.Market.Refresh(ctx)))
}

// handleCoin handles GET /api/coins/:id.
func (s *Server) handleCoin(c *gin.Context) {
	id := strings.ToLower(strings.TrimSpace(c.Param("id")))
	if id == "" {
		s.abort(c, http.StatusBadRequest, "coin id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	detail, err := s.deps.Coins.CoinDetails(ctx, id)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			s.abort(c, http.StatusNotFound, "coin not found")
			return
		}
		s.logger.Warn("coin details failed", "id", id, "err", err)
		s.abort(c, http.StatusBadGateway, "failed to fetch coin details")
		return
	}
	if detail == nil {
		s.abort(c, http.StatusNotFound, "coin not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coin":       detail,
		"price":      display.Price(detail.CurrentPrice.Decimal),
		"market_cap": display.MarketCap(detail.MarketCap),
		"change_24h": display.Percent(detail.Change24h),
		"change_7d":  display.Percent(detail.Change7d),
		"change_30d": display.Percent(detail.Change30d),
	})
}

// handleNews handles GET /api/news.
func (s *Server) handleNews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current": s.deps.News.Current(),
		"items":   s.deps.News.Items(),
	})
}

// handleNewsPause handles POST /api/news/pause.
func (s *Server) handleNewsPause(c *gin.Context) {
	s.deps.News.Pause()
	c.JSON(http.StatusOK, s.deps.News.Current())
}

// handleNewsResume handles POST /api/news/resume.
func (s *Server) handleNewsResume(c *gin.Context) {
	s.deps.News.Resume()
	c.JSON(http.StatusOK, s.deps.News.Current())
}

// handleChatTranscript handles GET /api/chat.
func (s *Server) handleChatTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"transcript": s.deps.Chat.Transcript()})
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChatSend handles POST /api/chat.
func (s *Server) handleChatSend(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	reply, err := s.deps.Chat.Send(ctx, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		s.abort(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chat.ErrBusy):
		s.abort(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      chat.ErrNoReply.Error(),
			"transcript": s.deps.Chat.Transcript(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":      reply,
		"transcript": s.deps.Chat.Transcript(),
	})
}

func (s *Server) abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"request_id": c.GetString(RequestIDContextKey),
	})
}
