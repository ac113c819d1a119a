package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/warekit/pricing-api/internal/config"
	"github.com/warekit/pricing-api/internal/discount"
	"github.com/warekit/pricing-api/internal/draft"
	"github.com/warekit/pricing-api/internal/events"
	"github.com/warekit/pricing-api/internal/obs"
	"github.com/warekit/pricing-api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	bus := &events.Bus{
		Store:     &events.Store{Pool: pool},
		Notifiers: []events.Notifier{events.LogNotifier{Log: logger}},
	}

	discountSvc := &discount.Service{
		Store: &discount.Store{Pool: pool},
		Cache: discount.NewCache(redisClient, cfg.DiscountCacheTTL),
		Log:   logger,
	}
	draftSvc := &draft.Service{
		Store: &draft.Store{Pool: pool},
		Bus:   bus,
		Log:   logger,
	}

	handlers := &tasks.Handlers{
		Discounts: discountSvc,
		Drafts:    draftSvc,
		DraftTTL:  cfg.DraftTTL,
		Log:       logger,
		Observe: func(task, result string) {
			obs.WorkerTaskTotal.WithLabelValues(task, result).Inc()
		},
	}

	redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}

	scheduler := asynq.NewScheduler(redisConn, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register(envOrDefault("DISCOUNT_EXPIRE_SCHEDULE", "@every 10m"), tasks.NewDiscountExpireTask()); err != nil {
		logger.Fatal().Err(err).Msg("register discount expiry schedule")
	}
	if _, err := scheduler.Register(envOrDefault("DRAFT_PURGE_SCHEDULE", "@every 1h"), tasks.NewDraftPurgeTask()); err != nil {
		logger.Fatal().Err(err).Msg("register draft purge schedule")
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("scheduler stopped with error")
		}
	}()

	srv := asynq.NewServer(redisConn, asynq.Config{Concurrency: 5})
	mux := asynq.NewServeMux()
	handlers.Register(mux)

	logger.Info().Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pricing-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
