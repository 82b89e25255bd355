package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleTool_Solve(t *testing.T) {
	s := newTestServer(t, nil)
	w := post(t, s.Handler(), "/tool", gosolve.ToolRequest{
		Tool:   "solve",
		Params: map[string]interface{}{"equation": "x+2=5"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp gosolve.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "x = 3", resp.String)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandleTool_SolverErrorIsInBody(t *testing.T) {
	s := newTestServer(t, nil)
	w := post(t, s.Handler(), "/tool", gosolve.ToolRequest{
		Tool:   "solve",
		Params: map[string]interface{}{"equation": "(2+3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp gosolve.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unbalanced brackets")
}

func TestHandleTool_RejectsUnknownFields(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"solve","extra":1}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTool_RejectsTrailingData(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"normalize","params":{"equation":"X"}} {}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSolve_IdealGas(t *testing.T) {
	s := newTestServer(t, nil)
	w := post(t, s.Handler(), "/v1/solve", SolveRequest{
		Equation: "P*V = n*8.3145*T",
		Bindings: map[string]float64{"P": 101325, "V": 0.0224, "n": 1, "rho": 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "t", resp.Unknown)
	assert.InDelta(t, 273.15, resp.Value, 0.5)
	assert.Len(t, resp.Warnings, 1)
	assert.NotEmpty(t, resp.Steps)
	assert.Equal(t, w.Header().Get("X-Request-ID"), resp.RequestID)
}

func TestHandleSolve_Check(t *testing.T) {
	s := newTestServer(t, nil)
	w := post(t, s.Handler(), "/v1/solve", SolveRequest{Equation: "2+3*4=14", Mode: "check"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Holds)
	assert.True(t, *resp.Holds)
}

func TestHandleSolve_ErrorCodes(t *testing.T) {
	tests := []struct {
		equation string
		code     string
	}{
		{"(2+3", "UNBALANCED_BRACKETS"},
		{"x+x=4", "REPEATED_UNKNOWN"},
		{"x+y=4", "UNDER_OR_OVER_DETERMINED"},
		{"x+=4", "MALFORMED_EQUATION"},
		{"asin(x)=2", "ARITHMETIC_DOMAIN"},
	}
	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.equation, func(t *testing.T) {
			w := post(t, s.Handler(), "/v1/solve", SolveRequest{Equation: tt.equation})
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHandleSolve_ValidatesBody(t *testing.T) {
	s := newTestServer(t, nil)
	w := post(t, s.Handler(), "/v1/solve", SolveRequest{Equation: "x=1", Mode: "guess"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, s.Handler(), "/v1/solve", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestID_IsEchoed(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimit = 0.001
		c.Server.Burst = 1
	})
	h := s.Handler()
	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/schema", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/schema", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Health checks and metric scrapes bypass the limiter.
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCall_CanceledCallerDoesNotFailSharedFlight(t *testing.T) {
	s := newTestServer(t, nil)
	var calls atomic.Int32
	started := make(chan struct{})
	s.tool = func(ctx context.Context, req gosolve.ToolRequest) gosolve.ToolResponse {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-time.After(300 * time.Millisecond):
			return gosolve.ToolResponse{String: "x = 3"}
		case <-ctx.Done():
			return gosolve.ToolResponse{Error: ctx.Err().Error()}
		}
	}
	req := gosolve.ToolRequest{Tool: "solve", Params: map[string]interface{}{"equation": "x+2=5"}}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan gosolve.ToolResponse, 1)
	go func() { first <- s.call(ctx, req) }()
	<-started
	cancel()
	assert.Equal(t, context.Canceled.Error(), (<-first).Error)

	second := s.call(context.Background(), req)
	assert.Empty(t, second.Error)
	assert.Equal(t, "x = 3", second.String)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchemaAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name": "solve"`)

	post(t, s.Handler(), "/v1/solve", SolveRequest{Equation: "2*x=10"})
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gosolve_solves_total")
}
