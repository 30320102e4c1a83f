// Package notification обрабатывает события shop для админ-чата Telegram
// и отвечает на команды бота.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	eventkafka "github.com/shestoi/GoShop/internal/event/kafka"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/telegram"
	"github.com/shestoi/GoShop/internal/templates"
)

// Service рендерит события в сообщения и отправляет их в админ-чат.
// Идемпотентность обеспечивается inbox таблицей по event_id.
type Service struct {
	logger   *zap.Logger
	inbox    repository.InboxRepository
	sender   telegram.Sender
	renderer *templates.Renderer
	chatID   string
}

// NewService создаёт новый экземпляр Service
func NewService(
	logger *zap.Logger,
	inbox repository.InboxRepository,
	sender telegram.Sender,
	renderer *templates.Renderer,
	chatID string,
) *Service {
	return &Service{
		logger:   logger,
		inbox:    inbox,
		sender:   sender,
		renderer: renderer,
		chatID:   chatID,
	}
}

// Handle обрабатывает одно событие. Неизвестный тип или новая версия конверта
// возвращают event.ErrUnsupported, битые данные: ParseError; обе ошибки не повторяются.
func (s *Service) Handle(ctx context.Context, env event.Envelope, src event.Source) error {
	if env.EventVersion > event.Version {
		return fmt.Errorf("%w: %s version %d", event.ErrUnsupported, env.EventType, env.EventVersion)
	}
	texts, err := s.render(env)
	if err != nil {
		return err
	}

	inserted, err := s.inbox.InsertInboxEvent(ctx, repository.InboxEvent{
		EventID:     env.EventID,
		EventType:   env.EventType,
		AggregateID: env.AggregateID,
		OccurredAt:  env.OccurredAt,
		Topic:       src.Topic,
		Partition:   src.Partition,
		Offset:      src.Offset,
	})
	if err != nil {
		return fmt.Errorf("insert inbox event: %w", err)
	}
	if !inserted {
		s.logger.Info("event already processed (duplicate)",
			zap.String("event_id", env.EventID),
			zap.String("event_type", env.EventType),
		)
		return nil
	}

	for _, text := range texts {
		if err := s.sender.Send(ctx, s.chatID, text); err != nil {
			// снимаем отметку, чтобы повтор снова отправил сообщение
			if delErr := s.inbox.DeleteInboxEvent(context.WithoutCancel(ctx), env.EventID); delErr != nil {
				s.logger.Error("failed to release inbox event",
					zap.String("event_id", env.EventID),
					zap.Error(delErr),
				)
			}
			return fmt.Errorf("send telegram message: %w", err)
		}
	}

	s.logger.Info("notification sent",
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("aggregate_id", env.AggregateID),
		zap.Int("messages", len(texts)),
	)
	return nil
}

// render возвращает тексты сообщений для события
func (s *Service) render(env event.Envelope) ([]string, error) {
	switch env.EventType {
	case event.TypeOrderCreated:
		var data event.OrderCreated
		if err := decodeData(env, &data); err != nil {
			return nil, err
		}
		return s.renderAll(data, templates.OrderCreated)

	case event.TypeOrderStatusChanged:
		var data event.OrderStatusChanged
		if err := decodeData(env, &data); err != nil {
			return nil, err
		}
		return s.renderAll(data, templates.OrderStatusChanged)

	case event.TypeTransactionCreated:
		var data event.TransactionCreated
		if err := decodeData(env, &data); err != nil {
			return nil, err
		}
		// продажи по заказу уже видны в сообщении о заказе, отдельно шлём только low stock
		var names []string
		if data.OrderID == nil {
			names = append(names, templates.TransactionCreated)
		}
		if data.LowStock {
			names = append(names, templates.LowStock)
		}
		return s.renderAll(data, names...)

	default:
		return nil, fmt.Errorf("%w: type %q", event.ErrUnsupported, env.EventType)
	}
}

func (s *Service) renderAll(data any, names ...string) ([]string, error) {
	texts := make([]string, 0, len(names))
	for _, name := range names {
		text, err := s.renderer.Render(name, data)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func decodeData(env event.Envelope, dst any) error {
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return &eventkafka.ParseError{Field: "data", Message: fmt.Sprintf("decode %s data: %v", env.EventType, err)}
	}
	return nil
}
