package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/hayl-fuel-api/logger"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	db    *pgxpool.Pool
	log   *logger.Logger
	cache signalCache
	cfg   config
	now   func() time.Time // overridable for tests
}

func newHandler(db *pgxpool.Pool, log *logger.Logger, cache signalCache, cfg config) *Handler {
	if cache == nil {
		cache = noopSignalCache{}
	}
	return &Handler{db: db, log: log, cache: cache, cfg: cfg, now: time.Now}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the helpers below
// work inside and outside transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows stays matchable through the wrapping.
func queryOne[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("query: %w", err)
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return results, nil
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// logFor returns the handler's logger tagged with the handler name and request context.
func (h *Handler) logFor(c *gin.Context, handler string) *logger.Logger {
	return h.log.With("handler", handler, "user_id", c.GetInt("user_id"), "request_id", c.GetString("request_id"))
}

// dateRange validates the required start/end query params (YYYY-MM-DD,
// inclusive). msg is a client-facing error, empty when valid.
func dateRange(c *gin.Context) (start, end, msg string) {
	start = c.Query("start")
	end = c.Query("end")
	if start == "" || end == "" {
		return "", "", "start and end query params are required"
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		return "", "", "invalid start, expected YYYY-MM-DD"
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		return "", "", "invalid end, expected YYYY-MM-DD"
	}
	if start > end {
		return "", "", "start must not be after end"
	}
	return start, end, ""
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool creates a connection pool. A pool (not a single conn) survives
// providers that close idle connections.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// schema migrations on poolers with server-side statement caches.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/energy", h.getEnergy)

	api.GET("/foods/:type/:id", h.getFood)
	api.POST("/foods/resolve", h.resolveFood)
	api.POST("/dishes", h.createDish)
	api.POST("/admin/ingredients/import", h.importIngredients)

	api.GET("/meal-logs", h.getMealLogs)
	api.GET("/meal-logs/daily", h.getDailySummary)
	api.GET("/meal-logs/week-summary", h.getWeekSummary)
	api.POST("/meal-logs", h.createMealLog)
	api.DELETE("/meal-logs/:id", h.deleteMealLog)

	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.createWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)

	api.GET("/adaptive-signal", h.getAdaptiveSignal)
	api.POST("/adaptive-signal/recompute", h.recomputeAdaptiveSignal)
}
