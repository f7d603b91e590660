package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/concierge/internal/logger"
)

// RegisterRoutes registers all API routes with the router.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/healthz", h.HandleHealth)
	if h.ports.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.ports.Metrics))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", h.HandleStartSession)
		v1.GET("/sessions/:id", h.HandleGetSession)
		v1.DELETE("/sessions/:id", h.HandleEndSession)
		v1.POST("/sessions/:id/turns", h.HandleTurn)
		v1.GET("/sessions/:id/journey", h.HandleJourney)
		v1.POST("/intent", h.HandleIntent)
		v1.POST("/rank", h.HandleRank)
	}
}

// NewRouter builds a gin engine with recovery, request logging and all routes.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	RegisterRoutes(r, h)
	return r
}

// requestLogger logs each request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
