package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/Josphat84/myoffice-sub003/internal/config"
	"github.com/Josphat84/myoffice-sub003/internal/module/view"
)

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

// swapServerHooks replaces the server and signal hooks for one test.
func swapServerHooks(t *testing.T, srv httpServer, ctx context.Context, cancel context.CancelFunc) *time.Duration {
	t.Helper()
	origServer, origNotify := newHTTPServer, notifyContext
	t.Cleanup(func() {
		newHTTPServer, notifyContext = origServer, origNotify
	})

	var gotTimeout time.Duration
	newHTTPServer = func(_ string, _ http.Handler, writeTimeout time.Duration) httpServer {
		gotTimeout = writeTimeout
		return srv
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}
	return &gotTimeout
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Mode:    gin.TestMode,
			Metrics: true,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app.db")},
		},
		Log:       config.LogConfig{Level: "error", Format: "text"},
		Dashboard: config.DashboardConfig{PageSize: 5},
	}
}

func cleanupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a == nil {
		return
	}
	if a.db != nil {
		closeDB(a.db)
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func TestResolveCORSConfig(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		cfg             config.CORSConfig
		wantOrigins     []string
		wantMethods     []string
		wantCredentials bool
		wantMaxAge      string
	}{
		{
			name:        "debug mode keeps permissive default",
			mode:        gin.DebugMode,
			wantOrigins: []string{"*"},
			wantMaxAge:  "86400",
		},
		{
			name:        "release mode without allowlist denies cross origin",
			mode:        gin.ReleaseMode,
			wantOrigins: []string{},
			wantMaxAge:  "86400",
		},
		{
			name: "configured values win",
			mode: gin.ReleaseMode,
			cfg: config.CORSConfig{
				AllowOrigins:     []string{"https://dash.example.com"},
				AllowMethods:     []string{http.MethodGet},
				AllowCredentials: true,
				MaxAge:           "12h",
			},
			wantOrigins:     []string{"https://dash.example.com"},
			wantMethods:     []string{http.MethodGet},
			wantCredentials: true,
			wantMaxAge:      "43200",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCORSConfig(tt.mode, tt.cfg)
			if !slices.Equal(got.AllowOrigins, tt.wantOrigins) {
				t.Errorf("AllowOrigins = %v; want %v", got.AllowOrigins, tt.wantOrigins)
			}
			if tt.wantMethods != nil && !slices.Equal(got.AllowMethods, tt.wantMethods) {
				t.Errorf("AllowMethods = %v; want %v", got.AllowMethods, tt.wantMethods)
			}
			if got.AllowCredentials != tt.wantCredentials {
				t.Errorf("AllowCredentials = %v", got.AllowCredentials)
			}
			if got.MaxAge != tt.wantMaxAge {
				t.Errorf("MaxAge = %q; want %q", got.MaxAge, tt.wantMaxAge)
			}
		})
	}
}

func TestValidateGinMode(t *testing.T) {
	for _, mode := range []string{gin.DebugMode, gin.ReleaseMode, gin.TestMode} {
		if err := validateGinMode(mode); err != nil {
			t.Errorf("validateGinMode(%q) = %v", mode, err)
		}
	}
	if err := validateGinMode("prod"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", defaultWriteTimeout},
		{"45s", 45 * time.Second},
		{"-1s", defaultWriteTimeout},
		{"soon", defaultWriteTimeout},
	}
	for _, tt := range tests {
		if got := writeTimeout(tt.raw); got != tt.want {
			t.Errorf("writeTimeout(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"invalid mode", func(c *config.Config) { c.Server.Mode = "prod" }, "invalid server.mode"},
		{"database setup fails", func(c *config.Config) { c.Database.Driver = "mysql" }, "setup database"},
		{"unknown remote entity", func(c *config.Config) {
			c.Dashboard.Sources = map[string]string{"payroll": "http://127.0.0.1:1/payroll"}
		}, "known: personnel, inventory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			a, err := New(cfg)
			if err == nil {
				cleanupTestApp(t, a)
				t.Fatal("New() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %q; want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := New(nil); err == nil {
		t.Error("New(nil) error = nil")
	}
}

func TestNew_ServesRecordsViewsAndMetrics(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { cleanupTestApp(t, a) })

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w
	}

	for _, body := range []string{
		`{"name":"Safety Gloves","currentStock":3,"minStock":10}`,
		`{"name":"Hard Hat","currentStock":40,"minStock":10}`,
	} {
		if w := call(http.MethodPost, "/api/v1/entities/inventory/records", body); w.Code != http.StatusCreated {
			t.Fatalf("create = %d: %s", w.Code, w.Body.String())
		}
	}

	w := call(http.MethodGet, "/api/v1/entities/inventory/records?status=low-stock", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", w.Code, w.Body.String())
	}
	var list struct {
		Data struct {
			TotalMatched int            `json:"total_matched"`
			Counts       map[string]int `json:"counts_by_status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if list.Data.TotalMatched != 1 || list.Data.Counts["in-stock"] != 1 {
		t.Errorf("list = %+v", list.Data)
	}

	w = call(http.MethodPost, "/api/v1/views", `{"entity":"inventory"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create view = %d: %s", w.Code, w.Body.String())
	}
	if a.views.Len() != 1 {
		t.Errorf("views.Len() = %d; want 1", a.views.Len())
	}

	if w := call(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health = %d", w.Code)
	}
	if w := call(http.MethodGet, "/api/v1/unknown", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", w.Code)
	}

	w = call(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	for _, want := range []string{
		`myoffice_http_requests_total{method="POST",route="/api/v1/entities/:entity/records",status="201"} 2`,
		`myoffice_queries_total{entity="inventory"}`,
		"go_goroutines",
	} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Metrics = false
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { cleanupTestApp(t, a) })

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("metrics = %d; want 404", w.Code)
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	listenErr := errors.New("listen failed")
	ctx, cancel := context.WithCancel(context.Background())
	swapServerHooks(t, &fakeHTTPServer{listenErr: listenErr}, ctx, cancel)

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	err := a.Run()
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "server error") || !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v; want server error wrapping %v", err, listenErr)
	}
}

func TestRun_ShutdownSignal_ClosesDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "run.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}

	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	gotTimeout := swapServerHooks(t, server, ctx, cancel)

	a := &App{
		engine: gin.New(),
		db:     db,
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: "15s"}},
		views:  view.NewStore(time.Minute),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}
	if *gotTimeout != 15*time.Second {
		t.Errorf("write timeout = %v; want 15s", *gotTimeout)
	}
	if pingErr := sqlDB.Ping(); pingErr == nil {
		t.Fatal("expected database connection to be closed, but Ping() succeeded")
	}
}

func TestRun_NilGuards(t *testing.T) {
	var nilApp *App
	if err := nilApp.Run(); err == nil {
		t.Error("nil app Run() error = nil")
	}
	if err := (&App{}).Run(); err == nil {
		t.Error("Run() without config error = nil")
	}
	if err := (&App{cfg: &config.Config{}}).Run(); err == nil {
		t.Error("Run() without engine error = nil")
	}
}
