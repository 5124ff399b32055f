package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupRecoveryRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger))
	r.GET("/panic", func(c *gin.Context) {
		panic("collection index out of range")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("got %d %q; want 200 ok", w.Code, w.Body.String())
	}
	if logBuf.Len() != 0 {
		t.Errorf("expected no log output, got:\n%s", logBuf.String())
	}
}

func TestRecovery_Panic_JSONEnvelope(t *testing.T) {
	for _, accept := range []string{"", "application/json", "text/html"} {
		t.Run("accept="+accept, func(t *testing.T) {
			var logBuf bytes.Buffer
			r := setupRecoveryRouter(newTestLogger(&logBuf))

			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse JSON response %q: %v", w.Body.String(), err)
			}
			if code, ok := body["code"].(float64); !ok || int(code) != 500 {
				t.Errorf("expected code 500, got %v", body["code"])
			}
			if body["message"] != "internal server error" {
				t.Errorf("expected message 'internal server error', got %v", body["message"])
			}
			if val, exists := body["data"]; !exists || val != nil {
				t.Errorf("expected null data, got %v (present=%v)", val, exists)
			}
		})
	}
}

func TestRecovery_Panic_LogsDetails(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))

	logOutput := logBuf.String()
	for _, want := range []string{"panic recovered", "collection index out of range", "path=/panic", "stack="} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, logOutput)
		}
	}
}

func TestRecovery_Panic_AbortsChain(t *testing.T) {
	var logBuf bytes.Buffer
	after := false

	r := gin.New()
	r.Use(Recovery(newTestLogger(&logBuf)))
	r.GET("/panic",
		func(c *gin.Context) { panic("boom") },
		func(c *gin.Context) { after = true },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if after {
		t.Error("expected later handler not to run after a panic")
	}
}
