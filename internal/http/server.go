// Package http provides the HTTP API for medragd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/medrag/internal/pipeline"
	"github.com/fyrsmithlabs/medrag/internal/safety"
)

// Pipeline is the query pipeline consumed by the server.
type Pipeline interface {
	CheckSafety(query string) safety.Verdict
	Answer(ctx context.Context, query string, topK int) (*pipeline.Answer, error)
}

// Server provides HTTP endpoints for medragd.
type Server struct {
	echo     *echo.Echo
	pipeline Pipeline
	logger   *zap.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(p Pipeline, logger *zap.Logger, cfg *Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		pipeline: p,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/safety", s.handleSafety)
	v1.POST("/answer", s.handleAnswer)
}

// SafetyRequest is the request body for POST /api/v1/safety.
type SafetyRequest struct {
	Query string `json:"query"`
}

// AnswerRequest is the request body for POST /api/v1/answer.
type AnswerRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// BlockedResponse is returned when the safety classifier rejects a
// query. The category tells the caller what to rephrase.
type BlockedResponse struct {
	Error       string `json:"error"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSafety classifies a query without answering it.
func (s *Server) handleSafety(c echo.Context) error {
	var req SafetyRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid safety request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	return c.JSON(http.StatusOK, s.pipeline.CheckSafety(req.Query))
}

// handleAnswer runs a query through the full pipeline. Blocked queries
// return 422 with the verdict; collaborator failures return 502 so
// callers can tell infrastructure failure from an empty result.
func (s *Server) handleAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid answer request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}

	answer, err := s.pipeline.Answer(c.Request().Context(), req.Query, req.TopK)
	if err != nil {
		var blocked *pipeline.BlockedError
		if errors.As(err, &blocked) {
			return c.JSON(http.StatusUnprocessableEntity, BlockedResponse{
				Error:       "query blocked by safety classifier",
				Category:    blocked.Verdict.Category,
				Subcategory: blocked.Verdict.Subcategory,
			})
		}

		s.logger.Error("answer pipeline failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "answer generation failed")
	}

	return c.JSON(http.StatusOK, answer)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
