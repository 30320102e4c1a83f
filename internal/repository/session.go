package repository

import (
	"context"
	"time"
)

// Session серверная сессия, ключ хранится в cookie SESSION
type Session struct {
	ID         string
	UserID     string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SessionRepository --dir=. --output=./mocks --outpkg=mocks

// SessionRepository хранилище сессий
type SessionRepository interface {
	Create(ctx context.Context, session Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (Session, error)
	// Touch обновляет last_seen_at и продлевает TTL (sliding expiration)
	Touch(ctx context.Context, sessionID string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// OTPCode одноразовый код: хранится только bcrypt хеш
type OTPCode struct {
	Phone     string
	CodeHash  string
	Attempts  int
	CreatedAt time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OTPRepository --dir=. --output=./mocks --outpkg=mocks

// OTPRepository хранилище одноразовых кодов
type OTPRepository interface {
	Save(ctx context.Context, code OTPCode, ttl time.Duration) error
	Get(ctx context.Context, phone string) (OTPCode, error)
	// IncrementAttempts возвращает новое число попыток
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
	// AcquireResendLock ставит блокировку повторной отправки на ttl;
	// false если блокировка уже стоит. Удаление кода её не снимает.
	AcquireResendLock(ctx context.Context, phone string, ttl time.Duration) (bool, error)
	ReleaseResendLock(ctx context.Context, phone string) error
}
