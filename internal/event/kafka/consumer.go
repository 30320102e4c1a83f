package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
)

// EventHandler обработчик разобранного события (реализуется notification.Service)
type EventHandler interface {
	Handle(ctx context.Context, env event.Envelope, src event.Source) error
}

// DeadLetters получатель сообщений, которые не удалось обработать
type DeadLetters interface {
	Publish(ctx context.Context, original kafka.Message, cause error, eventType, eventID, aggregateID string) error
}

// NewReader reader consumer group на несколько топиков
func NewReader(brokers []string, groupID string, topics []string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
}

// Consumer читает события shop и передаёт их EventHandler.
// At-least-once: offset коммитится после успешной обработки или записи в DLQ.
type Consumer struct {
	logger      *zap.Logger
	reader      MessageReader
	handler     EventHandler
	dlq         DeadLetters
	maxAttempts int
	backoffBase time.Duration
}

// NewConsumer создаёт consumer; backoff между попытками растёт как base, 2*base, 4*base...
func NewConsumer(
	logger *zap.Logger,
	reader MessageReader,
	handler EventHandler,
	dlq DeadLetters,
	maxAttempts int,
	backoffBase time.Duration,
) *Consumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Consumer{
		logger:      logger,
		reader:      reader,
		handler:     handler,
		dlq:         dlq,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start читает сообщения до отмены ctx
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoffBase):
			}
			continue
		}

		if !c.processMessage(ctx, m) {
			// остановка до commit: дальше не читаем, сообщение перечитается после рестарта
			c.logger.Info("consumer context cancelled, stopping")
			return nil
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage возвращает true, если offset можно коммитить; false только при остановке
func (c *Consumer) processMessage(ctx context.Context, m kafka.Message) bool {
	log := c.logger.With(
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	env, err := event.Decode(m.Value)
	if err != nil {
		log.Error("failed to decode event envelope", zap.Error(err))
		return c.toDLQ(ctx, log, m, &ParseError{Field: "envelope", Message: err.Error()}, event.Envelope{})
	}
	log = log.With(zap.String("event_id", env.EventID), zap.String("event_type", env.EventType))

	src := event.Source{Topic: m.Topic, Partition: m.Partition, Offset: m.Offset}
	err = c.handleWithRetry(ctx, log, env, src)
	switch {
	case err == nil:
		log.Debug("event processed")
		return true
	case ctx.Err() != nil:
		// при остановке не коммитим: сообщение перечитается после рестарта
		return false
	default:
		log.Error("failed to handle event, sending to DLQ", zap.Error(err))
		return c.toDLQ(ctx, log, m, err, env)
	}
}

// handleWithRetry повторяет обработку с экспоненциальной паузой;
// ErrUnsupported и ParseError не повторяются
func (c *Consumer) handleWithRetry(ctx context.Context, log *zap.Logger, env event.Envelope, src event.Source) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			log.Info("retrying event",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.handler.Handle(ctx, env, src)
		if err == nil {
			if attempt > 1 {
				log.Info("event processed after retry", zap.Int("attempt", attempt))
			}
			return nil
		}
		var parseErr *ParseError
		if errors.Is(err, event.ErrUnsupported) || errors.As(err, &parseErr) {
			return err
		}
		lastErr = err
		log.Warn("failed to handle event",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}
	return fmt.Errorf("exhausted %d attempts: %w", c.maxAttempts, lastErr)
}

// maxDLQBackoff потолок паузы между попытками записи в DLQ
const maxDLQBackoff = 30 * time.Second

// toDLQ повторяет запись в DLQ, пока она не пройдёт. Пропустить сообщение
// нельзя: commit следующего offset сдвинул бы группу дальше него.
// false только при остановке, тогда сообщение перечитается после рестарта.
func (c *Consumer) toDLQ(ctx context.Context, log *zap.Logger, m kafka.Message, cause error, env event.Envelope) bool {
	backoff := c.backoffBase
	for attempt := 1; ; attempt++ {
		// отдельный таймаут, чтобы остановка не оборвала уже начатую запись
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		err := c.dlq.Publish(pubCtx, m, cause, env.EventType, env.EventID, env.AggregateID)
		cancel()
		if err == nil {
			return true
		}
		log.Error("failed to publish to DLQ, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			log.Warn("stopping with unpublished DLQ message, offset not committed")
			return false
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxDLQBackoff || backoff <= 0 {
			backoff = maxDLQBackoff
		}
	}
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
