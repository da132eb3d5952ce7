package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// NewRouter wires the API routes onto a gin engine
func NewRouter(conversations *ConversationHandler, lawyers *LawyerHandler, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware...)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Session endpoints
		api.POST("/sessions", conversations.CreateSession)
		api.GET("/sessions/:id/state", conversations.GetState)
		api.POST("/sessions/:id/messages", conversations.ProcessMessage)
		api.DELETE("/sessions/:id", conversations.DeleteSession)

		// Lawyer endpoints
		api.GET("/sessions/:id/lawyers", lawyers.SearchForSession)
		api.POST("/lawyers/search", lawyers.Search)
		api.GET("/lawyers/:id", lawyers.GetLawyer)
	}

	return r
}
