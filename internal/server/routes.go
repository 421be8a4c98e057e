package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(s.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(s.cfg.AllowedOrigins))

	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.hub.ServeWS)

	api := router.Group("/api")
	{
		api.GET("/market", s.handleMarket)
		api.POST("/market/refresh", s.handleMarketRefresh)
		api.GET("/coins/:id", s.handleCoin)

		api.GET("/news", s.handleNews)
		api.POST("/news/pause", s.handleNewsPause)
		api.POST("/news/resume", s.handleNewsResume)

		api.GET("/chat", s.handleChatTranscript)
		api.POST("/chat", s.handleChatSend)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeaderKey, "Upgrade", "Connection"},
		ExposeHeaders: []string{"Content-Length", RequestIDHeaderKey},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || containsWildcard(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
