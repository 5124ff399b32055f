package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

func setupLoggerRouter(log *slog.Logger, requestID gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(requestID, Logger(log))
	r.GET("/entities/:entity/records", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/missing", func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(http.ErrHandlerTimeout)
		c.String(http.StatusInternalServerError, "error")
	})
	return r
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		path      string
		wantLevel string
	}{
		{"/entities/inventory/records", "level=INFO"},
		{"/missing", "level=WARN"},
		{"/broken", "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var logBuf bytes.Buffer
			r := setupLoggerRouter(newTestLogger(&logBuf), RequestID())

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !strings.Contains(logBuf.String(), tt.wantLevel) {
				t.Errorf("expected %s, got:\n%s", tt.wantLevel, logBuf.String())
			}
		})
	}
}

func TestLogger_ContainsExpectedFields(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupLoggerRouter(newTestLogger(&logBuf), RequestID())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/entities/inventory/records?q=gloves", nil))

	logOutput := logBuf.String()
	for _, field := range []string{"method=GET", "path=/entities/inventory/records", "status=200", "latency=", "client_ip=", "entity=inventory"} {
		if !strings.Contains(logOutput, field) {
			t.Errorf("expected log to contain %q, got:\n%s", field, logOutput)
		}
	}
}

func TestLogger_IncludesHandlerErrors(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupLoggerRouter(newTestLogger(&logBuf), RequestID())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	if !strings.Contains(logBuf.String(), "errors=") {
		t.Errorf("expected handler errors in log, got:\n%s", logBuf.String())
	}
}

func TestLogger_IncludesRequestIDFromContext(t *testing.T) {
	var logBuf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&logBuf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New error: %v", err)
	}
	defer log.Close()

	r := setupLoggerRouter(log.Logger, RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}))
	req := httptest.NewRequest(http.MethodGet, "/entities/training/records", nil)
	req.Header.Set(requestIDHeader, "test-req-id-789")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(logBuf.String(), "test-req-id-789") {
		t.Errorf("expected log to contain the request id, got:\n%s", logBuf.String())
	}
}
