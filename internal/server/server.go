// Package server exposes the solver over HTTP: the JSON tool interface used
// by agent frameworks, a typed solve endpoint, the tool schema, health and
// Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
)

// ServiceName is reported to OpenTelemetry.
const ServiceName = "gosolve-mcp-server"

// Server holds the solver and the HTTP plumbing around it.
//
// Thread Safety: Safe for concurrent use.
type Server struct {
	solver  *gosolve.Solver
	cfg     config.ServerConfig
	logger  *slog.Logger
	limiter *rate.Limiter
	flights singleflight.Group
	engine  *gin.Engine

	// tool runs one tool request; the solver's HandleToolCall unless a
	// test replaces it.
	tool func(context.Context, gosolve.ToolRequest) gosolve.ToolResponse
}

// New builds a Server from configuration.
func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		solver: gosolve.New(
			gosolve.WithLogger(logger),
			gosolve.WithTolerance(cfg.Solver.Tolerance),
			gosolve.WithMaxStepsFactor(cfg.Solver.MaxStepsFactor),
			gosolve.WithRecordSteps(cfg.Solver.RecordSteps),
		),
		cfg:    cfg.Server,
		logger: logger,
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.Burst)
	}
	s.tool = s.solver.HandleToolCall
	s.engine = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(ServiceName), s.requestID())

	// Health checks and scrapes are never rate limited.
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", s.rateLimit())
	api.POST("/tool", s.handleTool)
	api.POST("/v1/solve", s.handleSolve)
	api.GET("/schema", s.handleSchema)
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gosolve MCP server listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// ============================================================
// Middleware
// ============================================================

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return s.logger.With(slog.String("request_id", c.GetString("request_id")), slog.String("handler", handler))
}

// ============================================================
// Handlers
// ============================================================

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleTool handles POST /tool with a gosolve.ToolRequest body. Tool
// failures are reported inside the ToolResponse with status 200, as agent
// frameworks expect.
func (s *Server) handleTool(c *gin.Context) {
	logger := s.requestLogger(c, "handleTool")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	var req gosolve.ToolRequest
	if err := dec.Decode(&req); err != nil {
		logger.Warn("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if dec.More() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: trailing data", Code: "INVALID_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SolveTimeout)
	defer cancel()
	resp := s.call(ctx, req)
	if resp.Error != "" {
		logger.Debug("tool failed", slog.String("tool", req.Tool), slog.String("error", resp.Error))
	}
	c.JSON(http.StatusOK, resp)
}

// call runs a tool; identical concurrent requests share one computation.
// The shared computation is detached from any one caller and bounded by
// server.solve_timeout, so a caller that goes away does not fail the others.
func (s *Server) call(ctx context.Context, req gosolve.ToolRequest) gosolve.ToolResponse {
	params, err := json.Marshal(req.Params)
	if err != nil {
		return s.tool(ctx, req)
	}
	ch := s.flights.DoChan(req.Tool+"|"+string(params), func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SolveTimeout)
		defer cancel()
		return s.tool(sctx, req), nil
	})
	select {
	case res := <-ch:
		return res.Val.(gosolve.ToolResponse)
	case <-ctx.Done():
		return gosolve.ToolResponse{Error: ctx.Err().Error()}
	}
}

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	Equation string             `json:"equation" binding:"required,max=4096"`
	Bindings map[string]float64 `json:"bindings"`
	// Mode is "solve" (default), "evaluate" or "check".
	Mode string `json:"mode" binding:"omitempty,oneof=solve evaluate check"`
}

type SolveResponse struct {
	RequestID string             `json:"request_id"`
	Equation  string             `json:"equation"`
	Unknown   string             `json:"unknown,omitempty"`
	Value     float64            `json:"value"`
	Holds     *bool              `json:"holds,omitempty"`
	Bindings  map[string]float64 `json:"bindings,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
	Steps     []gosolve.Step     `json:"steps,omitempty"`
}

// handleSolve handles POST /v1/solve.
//
// Response:
//
//	200 OK: SolveResponse
//	400 Bad Request: body fails validation
//	422 Unprocessable Entity: the equation cannot be solved
//	504 Gateway Timeout: the solve exceeded server.solve_timeout
func (s *Server) handleSolve(c *gin.Context) {
	logger := s.requestLogger(c, "handleSolve")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SolveTimeout)
	defer cancel()

	run := s.solver.Solve
	switch req.Mode {
	case "evaluate":
		run = s.solver.Evaluate
	case "check":
		run = s.solver.Check
	}
	res, err := run(ctx, req.Equation, req.Bindings)
	if err != nil {
		status, code := errorStatus(err)
		logger.Info("solve failed", slog.String("equation", req.Equation), slog.String("code", code))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	resp := SolveResponse{
		RequestID: c.GetString("request_id"),
		Equation:  res.Equation,
		Unknown:   res.Unknown,
		Value:     res.Value,
		Bindings:  res.Bindings,
		Steps:     res.Steps,
	}
	if req.Mode == "check" {
		holds := res.Holds
		resp.Holds = &holds
	}
	for _, w := range res.Warnings {
		resp.Warnings = append(resp.Warnings, w.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, gosolve.ErrUnbalancedBrackets):
		return http.StatusUnprocessableEntity, "UNBALANCED_BRACKETS"
	case errors.Is(err, gosolve.ErrUnderOrOverDetermined):
		return http.StatusUnprocessableEntity, "UNDER_OR_OVER_DETERMINED"
	case errors.Is(err, gosolve.ErrRepeatedUnknown):
		return http.StatusUnprocessableEntity, "REPEATED_UNKNOWN"
	case errors.Is(err, gosolve.ErrMalformedEquation):
		return http.StatusUnprocessableEntity, "MALFORMED_EQUATION"
	case errors.Is(err, gosolve.ErrArithmeticDomain):
		return http.StatusUnprocessableEntity, "ARITHMETIC_DOMAIN"
	case errors.Is(err, gosolve.ErrUnsolvable):
		return http.StatusUnprocessableEntity, "UNSOLVABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(gosolve.MCPToolSpec()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
