package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

const (
	hashFieldUserID     = "user_id"
	hashFieldCreatedAt  = "created_at"
	hashFieldLastSeenAt = "last_seen_at"
)

// SessionRepository реализует repository.SessionRepository используя Redis hash
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository создаёт новый Redis session repository
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client: client,
		logger: logger,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Create сохраняет сессию в hash и выставляет TTL
func (r *SessionRepository) Create(ctx context.Context, session repository.Session, ttl time.Duration) error {
	key := sessionKey(session.ID)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key,
		hashFieldUserID, session.UserID,
		hashFieldCreatedAt, session.CreatedAt.UTC().Format(time.RFC3339),
		hashFieldLastSeenAt, session.LastSeenAt.UTC().Format(time.RFC3339),
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("failed to create session hash in redis",
			zap.Error(err),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug("session hash created",
		zap.String("user_id", session.UserID),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// Get читает сессию; отсутствующий ключ или пустой user_id: ErrNotFound
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (repository.Session, error) {
	values, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		r.logger.Error("failed to get session hash from redis",
			zap.Error(err),
		)
		return repository.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	userID := values[hashFieldUserID]
	if userID == "" {
		return repository.Session{}, repository.ErrNotFound
	}

	session := repository.Session{ID: sessionID, UserID: userID}
	session.CreatedAt, _ = time.Parse(time.RFC3339, values[hashFieldCreatedAt])
	session.LastSeenAt, _ = time.Parse(time.RFC3339, values[hashFieldLastSeenAt])
	return session, nil
}

// Touch обновляет last_seen_at и TTL; если ключ отсутствует: ErrNotFound
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := sessionKey(sessionID)

	// HSET на несуществующем ключе создаст его, поэтому сначала проверяем
	_, err := r.client.HGet(ctx, key, hashFieldUserID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to check session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, hashFieldLastSeenAt, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("failed to refresh session hash TTL in redis",
			zap.Error(err),
		)
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

// Delete удаляет сессию; отсутствующий ключ не ошибка
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		r.logger.Error("failed to delete session hash from redis",
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
