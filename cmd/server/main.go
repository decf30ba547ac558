package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/config"
	"github.com/iliyamo/production-planner/internal/database"
	"github.com/iliyamo/production-planner/internal/handler"
	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/middleware"
	"github.com/iliyamo/production-planner/internal/queue"
	"github.com/iliyamo/production-planner/internal/repository"
	"github.com/iliyamo/production-planner/internal/router"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("schema setup failed", zap.Error(err))
	}
	store := repository.NewDocumentRepo(db)

	// Redis is optional: without it the cache and rate limiter pass through.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx); err != nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.PublishEvents {
		events = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
	}
	if cfg.SyncConsumerEnabled {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.SyncLogDir, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("sync consumer stopped", zap.Error(err))
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	mw := router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Purge:     middleware.PurgeOnWrite(cacheCfg, rdb, logger),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	router.RegisterAll(e, handler.NewProductionHandler(store, events, logger), cfg.JWTSecret, mw)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
