// Package server exposes the analysis pipeline over HTTP: a JSON
// endpoint for one-shot scans and a WebSocket endpoint that streams
// pipeline events as they happen.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/pipeline"
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Input   string `json:"input"`
	Persist bool   `json:"persist"`
}

// Server serves the analysis API.
type Server struct {
	pipeline *pipeline.Pipeline
	cfg      *model.Config
	log      *zap.Logger
}

// New creates a server around a constructed pipeline. log may be nil.
func New(p *pipeline.Pipeline, cfg *model.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{pipeline: p, cfg: cfg, log: log}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Output.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.POST("/analyze", s.handleAnalyze)
	r.GET("/ws/analyze", s.handleAnalyzeWS)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": model.AgentVersion,
	})
}

// handleAnalyze runs one blocking scan and returns the full result.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Concurrency.AnalysisTimeout)
	defer cancel()

	rec := events.NewRecorder(s.log, nil)
	result, err := s.pipeline.Analyze(ctx, rec, req.Input, req.Persist)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
