package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/intelligence"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/observability"
	"github.com/odyssey-erp/stockroom/internal/persistence"
	"github.com/odyssey-erp/stockroom/internal/platform/cache"
	"github.com/odyssey-erp/stockroom/internal/realtime"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/warehouse"
	"github.com/odyssey-erp/stockroom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.LoadDotEnv(); err != nil {
		slog.Default().Error("load .env", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, closeStore, err := persistence.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()
	snapshot := persistence.LoadOrDefault(ctx, store, logger)

	// Redis backs idempotency keys and the analysis cache; both degrade to
	// no-ops when it is unreachable.
	var redisClient *redis.Client
	if client, err := cache.NewWithOptions(ctx, cfg.RedisOptions()); err != nil {
		logger.Warn("redis unavailable, idempotency and analysis cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	warehouseService := warehouse.NewService(snapshot, warehouse.Options{
		Store:           store,
		Publisher:       hub,
		Metrics:         metrics,
		Logger:          logger,
		DefaultOperator: cfg.DefaultOperator,
		WithdrawPolicy:  inventory.WithdrawPolicy(cfg.WithdrawPolicy),
	})
	var idempotency *shared.IdempotencyStore
	if redisClient != nil {
		idempotency = shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	}
	warehouseHandler := warehouse.NewHandler(logger, warehouseService, idempotency)

	genClient, err := intelligence.NewClient(ctx, cfg.GenAIClientConfig())
	if err != nil {
		logger.Error("failed to create model client", slog.Any("error", err))
		os.Exit(1)
	}
	intelligenceService := intelligence.NewService(
		genClient,
		intelligence.NewCache(redisClient, cfg.AnalysisCacheTTL, logger),
		logger,
		intelligence.Config{TextModel: cfg.GenAITextModel, ImageModel: cfg.GenAIImageModel},
	)
	intelligenceHandler := intelligence.NewHandler(logger, intelligenceService, warehouseService)

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(cfg.AsynqRedis())
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		WarehouseHandler:    warehouseHandler,
		IntelligenceHandler: intelligenceHandler,
		JobHandler:          jobHandler,
		Realtime:            hub,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("store", cfg.StoreDriver),
			slog.Int("items", len(snapshot.Inventory)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
