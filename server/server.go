// Package server exposes the chat pipeline over HTTP.
//
// Three endpoints: GET /health, GET /schema, POST /query. The /query
// response always has the same shape whether the exchange succeeded or
// failed, so clients branch only on whether error is non-empty. Internal
// failures never surface as an opaque 5xx.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askdb/askdb/chat"
)

const serviceName = "askdb"

// Server holds the handler dependencies.
type Server struct {
	chat   *chat.Service
	db     chat.Database
	logger *slog.Logger
}

// New builds a Server.
func New(chatSvc *chat.Service, database chat.Database, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{chat: chatSvc, db: database, logger: logger}
}

// Router assembles the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(), s.requestLog(), metricsMiddleware())

	router.GET("/health", s.health)
	router.GET("/schema", s.schema)
	router.POST("/query", s.query)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// corsMiddleware allows the browser UI, served from another origin,
// to reach the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLog records one line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http_request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("duration", time.Since(start).String()),
		)
	}
}
