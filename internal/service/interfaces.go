package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SMSSender --dir=. --output=./mocks --outpkg=mocks

// SMSSender доставляет OTP коды
type SMSSender interface {
	Send(ctx context.Context, phone string, text string) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ObjectStorage --dir=. --output=./mocks --outpkg=mocks

// ObjectStorage хранилище содержимого вложений (local, s3, gcs)
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Settings --dir=. --output=./mocks --outpkg=mocks

// Settings типизированное чтение настроек с дефолтом при отсутствии или ошибке разбора
type Settings interface {
	String(key string, def string) string
	Int(key string, def int64) int64
	Bool(key string, def bool) bool
	Decimal(key string, def decimal.Decimal) decimal.Decimal
	Duration(key string, def time.Duration) time.Duration
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Auditor --dir=. --output=./mocks --outpkg=mocks

// Auditor фиксирует административные действия; ошибки не возвращает
type Auditor interface {
	Record(ctx context.Context, actorID string, action, entity, entityID string, payload map[string]any)
}
