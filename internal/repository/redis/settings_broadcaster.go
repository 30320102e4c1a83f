package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SettingsReloadChannel канал pub/sub, по которому инстансы перечитывают настройки
const SettingsReloadChannel = "settings:reload"

// SettingsBroadcaster реализует repository.SettingsBroadcaster поверх Redis pub/sub
type SettingsBroadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSettingsBroadcaster создаёт broadcaster
func NewSettingsBroadcaster(client *redis.Client, logger *zap.Logger) *SettingsBroadcaster {
	return &SettingsBroadcaster{client: client, logger: logger}
}

func (b *SettingsBroadcaster) Publish(ctx context.Context) error {
	if err := b.client.Publish(ctx, SettingsReloadChannel, "reload").Err(); err != nil {
		return fmt.Errorf("failed to publish settings reload: %w", err)
	}
	return nil
}

// Subscribe блокируется до отмены ctx
func (b *SettingsBroadcaster) Subscribe(ctx context.Context, onReload func()) error {
	sub := b.client.Subscribe(ctx, SettingsReloadChannel)
	defer sub.Close()

	// дожидаемся подтверждения подписки, чтобы не потерять первое сообщение
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SettingsReloadChannel, err)
	}
	b.logger.Info("subscribed to settings reload channel", zap.String("channel", SettingsReloadChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			onReload()
		}
	}
}
