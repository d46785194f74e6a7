package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Query    string `json:"query" binding:"required"`
	Language string `json:"language"`
}

// QueryResponse is the uniform /query reply shape. On failure Error is
// populated and the other fields are empty or partial; on success Error
// is the empty string.
type QueryResponse struct {
	SQL      string           `json:"sql"`
	DBResult []map[string]any `json:"db_result"`
	Answer   string           `json:"answer"`
	Error    string           `json:"error"`
}

// health reports liveness.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// schema returns the current schema descriptor.
func (s *Server) schema(c *gin.Context) {
	descriptor, err := s.db.Schema(c.Request.Context())
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "schema fetch failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database is unavailable"})
		return
	}
	c.JSON(http.StatusOK, descriptor)
}

// query runs one chat exchange.
func (s *Server) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, QueryResponse{
			DBResult: []map[string]any{},
			Error:    "invalid request body: " + err.Error(),
		})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	ex := s.chat.Ask(c.Request.Context(), req.Query, req.Language)

	resp := QueryResponse{
		SQL:      ex.SQL,
		DBResult: ex.Rows,
		Answer:   ex.Answer,
	}
	if ex.Err != nil {
		resp.Error = ex.Err.Message
		queryFailuresTotal.WithLabelValues(string(ex.Err.Kind)).Inc()
	}

	c.JSON(http.StatusOK, resp)
}
