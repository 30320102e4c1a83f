// Package storage хранит содержимое вложений: локальный диск, S3 или GCS.
package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/config"
)

// Storage объектное хранилище по ключу
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get возвращает repository.ErrNotFound (обёрнутый), если объекта нет
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete отсутствующего объекта не ошибка
	Delete(ctx context.Context, key string) error
	Close() error
}

// New создаёт хранилище по STORAGE_DRIVER
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local":
		logger.Info("using local attachment storage", zap.String("dir", cfg.LocalDir))
		return NewLocal(cfg.LocalDir)
	case "s3":
		logger.Info("using s3 attachment storage",
			zap.String("bucket", cfg.S3Bucket),
			zap.String("region", cfg.S3Region),
			zap.String("endpoint", cfg.S3Endpoint),
		)
		return NewS3(ctx, cfg)
	case "gcs":
		logger.Info("using gcs attachment storage", zap.String("bucket", cfg.GCSBucket))
		return NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
