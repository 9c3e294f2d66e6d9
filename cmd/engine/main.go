package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astrolive/loyalty-engine/internal/config"
	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/internal/handler"
	"github.com/astrolive/loyalty-engine/internal/hub"
	"github.com/astrolive/loyalty-engine/internal/identity"
	"github.com/astrolive/loyalty-engine/internal/kafka"
	"github.com/astrolive/loyalty-engine/internal/ledger"
	"github.com/astrolive/loyalty-engine/internal/levels"
	"github.com/astrolive/loyalty-engine/internal/notify"
	"github.com/astrolive/loyalty-engine/internal/payment"
	"github.com/astrolive/loyalty-engine/internal/points"
	"github.com/astrolive/loyalty-engine/internal/repository"
	"github.com/astrolive/loyalty-engine/internal/service"
	"github.com/astrolive/loyalty-engine/internal/session"
	"github.com/astrolive/loyalty-engine/pkg/database"
	pkglog "github.com/astrolive/loyalty-engine/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: cfg.Log.ServiceName,
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db, &domain.LoyaltyLevelModel{}, &domain.GiftModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Catalog repositories
	levelRepo := repository.NewGormLevelRepository(db)
	giftRepo := repository.NewGormGiftRepository(db)

	// Point ledger and level cache, redis-backed when enabled
	var pointLedger ledger.Ledger
	var levelCache levels.LevelCache
	if cfg.Redis.Enabled {
		redisLedger, err := ledger.NewRedisLedger(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis for ledger")
		}
		defer redisLedger.Close()
		pointLedger = redisLedger

		redisCache, err := levels.NewRedisLevelCache(cfg.Redis, "levels")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis for level cache")
		}
		defer redisCache.Close()
		levelCache = redisCache
		logger.Info().Msg("redis ledger and level cache connected")
	} else {
		pointLedger = ledger.NewMemoryLedger()
		levelCache = levels.NewMemoryLevelCache()
	}

	levelProvider := levels.NewProvider(levelRepo, levelCache, cfg.Cache.LevelTTL)

	// Event stream
	var producer kafka.EventProducer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka producer ready")
	} else {
		producer = kafka.NewNoopProducer()
	}

	// WebSocket hub
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	// Core engine
	awarder := points.NewAwarder(pointLedger, levelProvider, cfg.Points)
	dispatcher := notify.NewDispatcher(wsHub, cfg.Notify.DisplayWindow.Milliseconds())
	manager := session.NewManager(session.Config{
		HistoryCapacity: cfg.History.Capacity,
		WatchInterval:   cfg.Points.WatchInterval,
	}, awarder, dispatcher, wsHub, producer)

	idp := identity.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	paymentClient := payment.NewHTTPClient(cfg.Payment.BaseURL, cfg.Payment.Timeout)

	engine := service.NewEngineService(
		wsHub, manager, idp, awarder, dispatcher,
		paymentClient, giftRepo, levelProvider, pointLedger, producer,
	)

	// Handlers
	wsHandler := handler.NewWSHandler(wsHub, engine, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(engine, levelRepo, giftRepo, levelProvider, pointLedger, idp)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	wsHandler.RegisterRoutes(r)
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("loyalty engine starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	if err := engine.Stop(); err != nil {
		logger.Warn().Err(err).Msg("engine stop failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown failed")
	}
}
