package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

// SettingsService кэш типизированных настроек.
// Изменение через Update рассылает сигнал reload всем инстансам через Redis.
type SettingsService struct {
	logger      *zap.Logger
	repo        repository.SettingRepository
	broadcaster repository.SettingsBroadcaster
	auditor     Auditor

	mu    sync.RWMutex
	cache map[string]repository.Setting
}

// NewSettingsService создаёт новый экземпляр SettingsService; кэш пуст до первого Reload
func NewSettingsService(
	logger *zap.Logger,
	repo repository.SettingRepository,
	broadcaster repository.SettingsBroadcaster,
	auditor Auditor,
) *SettingsService {
	return &SettingsService{
		logger:      logger,
		repo:        repo,
		broadcaster: broadcaster,
		auditor:     auditor,
		cache:       make(map[string]repository.Setting),
	}
}

// Reload перечитывает все настройки из БД и атомарно заменяет кэш
func (s *SettingsService) Reload(ctx context.Context) error {
	list, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}
	cache := make(map[string]repository.Setting, len(list))
	for _, st := range list {
		cache[st.Key] = st
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()

	s.logger.Debug("settings reloaded", zap.Int("count", len(cache)))
	return nil
}

// Run слушает канал reload и периодически перечитывает настройки до отмены ctx
func (s *SettingsService) Run(ctx context.Context, refresh time.Duration) {
	go func() {
		err := s.broadcaster.Subscribe(ctx, func() {
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn("settings reload on broadcast failed", zap.Error(err))
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("settings subscription stopped", zap.Error(err))
		}
	}()

	if refresh <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn("periodic settings reload failed", zap.Error(err))
			}
		}
	}
}

func (s *SettingsService) lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.cache[key]
	return st.Value, ok
}

// String значение как есть
func (s *SettingsService) String(key string, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

// Int целое значение; при ошибке разбора: def
func (s *SettingsService) Int(key string, def int64) int64 {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		s.logger.Warn("malformed int setting", zap.String("key", key), zap.String("value", v))
		return def
	}
	return n
}

// Bool логическое значение; при ошибке разбора: def
func (s *SettingsService) Bool(key string, def bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		s.logger.Warn("malformed bool setting", zap.String("key", key), zap.String("value", v))
		return def
	}
	return b
}

// Decimal десятичное значение; при ошибке разбора: def
func (s *SettingsService) Decimal(key string, def decimal.Decimal) decimal.Decimal {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		s.logger.Warn("malformed decimal setting", zap.String("key", key), zap.String("value", v))
		return def
	}
	return d
}

// Duration длительность в формате time.ParseDuration; при ошибке разбора: def
func (s *SettingsService) Duration(key string, def time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		s.logger.Warn("malformed duration setting", zap.String("key", key), zap.String("value", v))
		return def
	}
	return d
}

// List все настройки из БД
func (s *SettingsService) List(ctx context.Context, actor Actor) ([]repository.Setting, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return list, nil
}

// ValidateSettingValue проверяет, что value разбирается как typ
func ValidateSettingValue(typ repository.SettingType, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch typ {
	case repository.SettingString:
	case repository.SettingInt:
		_, err = strconv.ParseInt(value, 10, 64)
	case repository.SettingBool:
		_, err = strconv.ParseBool(value)
	case repository.SettingDecimal:
		_, err = decimal.NewFromString(value)
	case repository.SettingDuration:
		_, err = time.ParseDuration(value)
	default:
		return invalid("type", "unknown setting type %q", typ)
	}
	if err != nil {
		return invalid("value", "%q is not a valid %s", value, typ)
	}
	return nil
}

// Update меняет значение существующей настройки с проверкой типа.
// Тип задаётся миграциями и через API не меняется.
func (s *SettingsService) Update(ctx context.Context, actor Actor, key, value string) (repository.Setting, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Setting{}, err
	}
	current, err := s.repo.Get(ctx, key)
	if err != nil {
		return repository.Setting{}, fmt.Errorf("get setting: %w", err)
	}
	value = strings.TrimSpace(value)
	if err := ValidateSettingValue(current.Type, value); err != nil {
		return repository.Setting{}, err
	}

	updated, err := s.repo.Upsert(ctx, repository.Setting{
		Key:         key,
		Type:        current.Type,
		Value:       value,
		Description: current.Description,
	})
	if err != nil {
		return repository.Setting{}, fmt.Errorf("upsert setting: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = updated
	s.mu.Unlock()

	if err := s.broadcaster.Publish(ctx); err != nil {
		// остальные инстансы подхватят изменение периодическим refresh
		s.logger.Warn("failed to publish settings reload", zap.Error(err))
	}

	s.logger.Info("setting updated", zap.String("key", key), zap.String("value", value))
	s.auditor.Record(ctx, actor.UserID, "setting.update", "setting", key, map[string]any{
		"from": current.Value,
		"to":   updated.Value,
	})
	return updated, nil
}

// ReloadAll перечитывает настройки локально и рассылает reload остальным
func (s *SettingsService) ReloadAll(ctx context.Context, actor Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Reload(ctx); err != nil {
		return err
	}
	if err := s.broadcaster.Publish(ctx); err != nil {
		return fmt.Errorf("publish settings reload: %w", err)
	}
	return nil
}
