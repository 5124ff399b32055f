package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/Josphat84/myoffice-sub003/internal/config"
	"github.com/Josphat84/myoffice-sub003/internal/entity"
	"github.com/Josphat84/myoffice-sub003/internal/metrics"
	"github.com/Josphat84/myoffice-sub003/internal/middleware"
	"github.com/Josphat84/myoffice-sub003/internal/module/records"
	"github.com/Josphat84/myoffice-sub003/internal/module/view"
	"github.com/Josphat84/myoffice-sub003/internal/source"
	"github.com/Josphat84/myoffice-sub003/internal/store"
)

const (
	defaultWriteTimeout = 60 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// App holds the wired dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
	views  *view.Store
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, writeTimeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires an App from cfg, which is expected to have passed Validate.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes permissive CORS")
	}

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDB(db)
	}()

	collections := store.NewCollectionStore(db)
	if err := collections.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate record store: %w", err)
	}
	stored, err := collections.Entities(context.Background())
	if err != nil {
		return nil, fmt.Errorf("list stored collections: %w", err)
	}
	log.Info("record store ready", slog.Any("collections", stored))

	dash := cfg.Dashboard
	registry := entity.Default(entity.Options{
		PageSize:             dash.PageSize,
		CertificationWarning: dash.CertificationWarning(),
		Locale:               dash.LocaleTag(),
	})

	var remote *source.HTTPSource
	if len(dash.Sources) > 0 {
		remote = source.NewHTTPSource(dash.Sources, nil, dash.FetchTimeoutDuration())
		for _, name := range remote.Entities() {
			if _, err := registry.Lookup(name); err != nil {
				return nil, fmt.Errorf("dashboard.sources: %w (known: %s)", err, strings.Join(registry.Names(), ", "))
			}
			log.Info("remote record source", slog.String("entity", name))
		}
	}
	router := source.NewRouter(collections, remote)

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	views := view.NewStore(dash.ViewTTLDuration())
	modules := []Module{
		records.NewModule(records.NewHandler(records.NewService(registry, router, m))),
		view.NewModule(view.NewHandler(view.NewService(registry, router, views, m))),
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log.Logger),
		m.Middleware(),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
	)

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:  modules,
		DB:       db,
		Gatherer: gatherer,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
		views:  views,
	}, nil
}

// resolveCORSConfig starts from the permissive default and applies configured
// values. Release mode without an allowlist denies cross-origin requests.
func resolveCORSConfig(mode string, cfg config.CORSConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		cors.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		cors.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		cors.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		cors.AllowHeaders = cfg.AllowHeaders
	}
	if cfg.MaxAge != "" {
		if d, err := time.ParseDuration(cfg.MaxAge); err == nil {
			cors.MaxAge = fmt.Sprintf("%d", int(d.Seconds()))
		}
	}
	cors.AllowCredentials = cfg.AllowCredentials
	return cors
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// writeTimeout returns server.timeout, or the default when it is unset.
func writeTimeout(raw string) time.Duration {
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return defaultWriteTimeout
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully, stops
// the view sweeper and closes the database and logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}
	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, writeTimeout(a.cfg.Server.Timeout))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.views != nil {
		sweepCtx, cancelSweep := context.WithCancel(ctx)
		defer cancelSweep()
		go a.views.Run(sweepCtx, time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		closeDB(a.db)
		log.Info("database connection closed")
	}

	if a.views != nil {
		log.Info("discarding open views", slog.Int("count", a.views.Len()))
	}
	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("database close error", slog.Any("error", err))
	}
}
