package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rizkyhp/medremind/internal/config"
	"github.com/rizkyhp/medremind/internal/handler"
	"github.com/rizkyhp/medremind/internal/infra/postgresql"
	"github.com/rizkyhp/medremind/internal/infra/postgresql/migrations"
	infraredis "github.com/rizkyhp/medremind/internal/infra/redis"
	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/provider"
	"github.com/rizkyhp/medremind/internal/queue"
	"github.com/rizkyhp/medremind/internal/repository"
	"github.com/rizkyhp/medremind/internal/service"
	"github.com/rizkyhp/medremind/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close() //nolint:errcheck

	logRepo := repository.NewGormLogEntryRepo(db)
	medicationRepo := repository.NewGormMedicationRepo(db)
	profileRepo := repository.NewGormProfileRepo(db)

	pushProvider, err := provider.NewExpoPushProvider(cfg.PushGatewayURL)
	if err != nil {
		logger.Fatal("push provider initialization failed", zap.Error(err))
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.PushRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	var dispatcher *service.ReminderDispatcher
	fires := service.NewFireQueue(func(ctx context.Context, logID string) {
		if err := dispatcher.Dispatch(ctx, logID); err != nil {
			logger.Error("reminder dispatch failed",
				zap.String("logId", logID),
				zap.Error(err),
			)
		}
	}, logger)

	dispatcher, err = service.NewReminderDispatcher(logRepo, profileRepo, pushProvider, limiter, fires, logger)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}
	dispatcher.SetMetrics(metrics)

	scanLoop, err := service.NewScanLoop(logRepo, fires, cfg.ScanInterval, 0, logger)
	if err != nil {
		logger.Fatal("scan loop initialization failed", zap.Error(err))
	}
	scanLoop.SetMetrics(metrics)

	actionService, err := service.NewActionService(logRepo, fires, cfg.SnoozeDelay, logger)
	if err != nil {
		logger.Fatal("action service initialization failed", zap.Error(err))
	}
	actionService.SetMetrics(metrics)

	publisher := queue.NewRabbitMQPublisher(rabbit)
	logService, err := service.NewLogService(logRepo, publisher, logger)
	if err != nil {
		logger.Fatal("log service initialization failed", zap.Error(err))
	}

	consumer := queue.NewRabbitMQConsumer(rabbit, cfg.NotifierConcurrency, logger)
	eventNotifier, err := service.NewEventNotifier(consumer, dispatcher, cfg.NotifierConcurrency, logger)
	if err != nil {
		logger.Fatal("event notifier initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "medremind",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterLogRoutes(app, logService, actionService); err != nil {
		logger.Fatal("log routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterMedicationRoutes(app, medicationRepo); err != nil {
		logger.Fatal("medication routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterProfileRoutes(app, profileRepo); err != nil {
		logger.Fatal("profile routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return fires.Run(groupCtx)
	})

	g.Go(func() error {
		return scanLoop.Start(groupCtx)
	})

	g.Go(func() error {
		return eventNotifier.Start(groupCtx)
	})

	g.Go(func() error {
		logger.Info("medremind api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("service terminated", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
