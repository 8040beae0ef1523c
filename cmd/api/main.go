// Package main is the entry point for the property-feed-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/config"
	"property-feed-service/internal/domain"
	"property-feed-service/internal/feed"
	"property-feed-service/internal/infra/cache"
	"property-feed-service/internal/infra/ftpfeed"
	"property-feed-service/internal/infra/partner"
	"property-feed-service/internal/job"
	"property-feed-service/internal/logger"
	"property-feed-service/internal/transport/httpserver"
	"property-feed-service/internal/validator"
	"property-feed-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting property-feed-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Redis is only needed for the redis cache backend and for
	// distributed refresh locking.
	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" || cfg.Schedule.DistributedLock {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Create cache store
	var store domain.CacheStore
	switch cfg.Cache.Backend {
	case "redis":
		store = cache.NewRedis(redisClient, cfg.Cache.Namespaces, cfg.Cache.KeyPrefix, log.Logger)
	default:
		store = cache.NewMemory(cfg.Cache.Namespaces, log.Logger)
	}
	log.Info("cache store ready",
		zap.String("backend", cfg.Cache.Backend),
		zap.Strings("namespaces", store.Namespaces()),
	)

	// Create feed transport and parser
	transport := ftpfeed.New(
		ftpfeed.Config{
			Host:     cfg.Feed.Host,
			Port:     cfg.Feed.Port,
			User:     cfg.Feed.User,
			Password: cfg.Feed.Password,
			Dir:      cfg.Feed.Dir,
			Timeout:  cfg.Feed.Timeout,
		},
		log.Logger,
	)
	parser := feed.NewParser(log.Logger)

	// Create partner detail client
	partnerClient := partner.New(
		partner.ClientConfig{
			BaseURL: cfg.Partner.BaseURL,
			Token:   cfg.Partner.Token,
			Timeout: cfg.Partner.Timeout,
			Retry: partner.RetryConfig{
				MaxAttempts: cfg.Partner.Retry.MaxAttempts,
				WaitTime:    cfg.Partner.Retry.WaitTime,
				MaxWaitTime: cfg.Partner.Retry.MaxWaitTime,
			},
			CB: partner.CBConfig{
				MaxRequests:  cfg.Partner.CB.MaxRequests,
				Interval:     cfg.Partner.CB.Interval,
				Timeout:      cfg.Partner.CB.Timeout,
				FailureRatio: cfg.Partner.CB.FailureRatio,
			},
		},
		log.Logger,
	)

	// Create services
	ingestSvc := service.NewIngestService(transport, parser, store, log.Logger)
	propertySvc := service.NewPropertyService(ingestSvc, store, partnerClient, log.Logger)

	// Distributed locker keeps a fleet from ingesting the same feed twice
	var distLocker locker.DistributedLocker
	if cfg.Schedule.DistributedLock {
		distLocker = locker.NewRedisLocker(redisClient, log.Logger)
	}

	// Create refresh scheduler
	scheduler, err := job.NewRefreshScheduler(
		ingestSvc,
		job.Config{
			Expression: cfg.Schedule.Expression,
			Timezone:   cfg.Schedule.Timezone,
			Timeout:    cfg.Schedule.Timeout,
			OnStartup:  cfg.Schedule.OnStartup,
		},
		log.Logger,
		distLocker,
	)
	if err != nil {
		log.Fatal("failed to create refresh scheduler", zap.Error(err))
	}

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			AppName:   cfg.App.Name,
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
		},
		propertySvc,
		scheduler,
		store,
		v,
		log.Logger,
	)

	scheduler.Start()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
