package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/Josphat84/myoffice-sub003/internal/metrics"
	"github.com/Josphat84/myoffice-sub003/internal/pkg"
)

// RouteDeps holds what RegisterRoutes mounts.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// Gatherer backs GET /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes mounts /health, /metrics, every module under /api/v1 and the
// JSON 404 and 405 handlers.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.GET("/metrics", metrics.Handler(deps.Gatherer))
	}

	api := r.Group("/api/v1")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.HandleMethodNotAllowed = true
	r.NoRoute(statusHandler(http.StatusNotFound, "not found"))
	r.NoMethod(statusHandler(http.StatusMethodNotAllowed, "method not allowed"))
	return nil
}

// healthHandler pings the database. Any failure reports 503 "degraded".
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if err := ping(c.Request.Context(), db); err != nil {
			dbStatus = "error"
		}

		status, code := "ok", http.StatusOK
		if dbStatus != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func statusHandler(code int, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(code, pkg.Response{Code: code, Message: msg})
	}
}
