package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер pgx для goose
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/config"
	platformhealth "github.com/shestoi/GoShop/platform/health/http"
	platformlogging "github.com/shestoi/GoShop/platform/logging"
)

const connectTimeout = 5 * time.Second

func newLogger(cfg config.Config, service string) (*zap.Logger, error) {
	return platformlogging.New(platformlogging.Config{
		ServiceName: service,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
}

// connectPostgres создаёт пул и проверяет подключение
func connectPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connection established")
	return pool, nil
}

// migrate накатывает миграции goose из dir
func migrate(dsn, dir string, logger *zap.Logger) error {
	logger.Info("Applying database migrations", zap.String("dir", dir))
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migrations db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")
	return nil
}

func connectRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) (*redis.Client, error) {
	logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("Redis connection established")
	return client, nil
}

func connectMongo(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("Connecting to MongoDB")
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("MongoDB connection established")
	return client, nil
}

// Проверки готовности для /health
func postgresCheck(pool *pgxpool.Pool) platformhealth.Check {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

func redisCheck(client *redis.Client) platformhealth.Check {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

func mongoCheck(client *mongo.Client) platformhealth.Check {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}
