package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lg/hayl-fuel-api/logger"
)

func main() {
	// .env is optional for the server; deployed environments set variables directly.
	envErr := godotenv.Load()

	cfg := loadConfig(nil)
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if envErr != nil {
		log.Debug("no .env file loaded", "error", envErr)
	}
	cfg = loadConfig(log)

	if cfg.DBURL == "" {
		log.Fatal("DB_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := newDBPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("database unavailable", "error", err)
	}
	defer pool.Close()
	log.Info("DB pool ready")

	var cache signalCache = noopSignalCache{}
	if cfg.RedisAddr != "" {
		rc, err := newRedisSignalCache(cfg.RedisAddr, cfg.SignalCacheTTL)
		if err != nil {
			// The cache is an optimization; run without it rather than refusing to start.
			log.Warn("redis unavailable, adaptive signal cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rc.Close()
			cache = rc
			log.Info("adaptive signal cache ready", "addr", cfg.RedisAddr, "ttl", cfg.SignalCacheTTL.String())
		}
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), corsMiddleware(cfg.CORSOrigins))
	router.SetTrustedProxies(nil)

	h := newHandler(pool, log, cache, cfg)
	h.registerRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
