package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/platform/observability"
)

// OutboxDispatcher публикует pending события outbox в Kafka.
// Ключ сообщения: aggregate_id, поэтому события одного заказа или товара
// попадают в одну партицию и читаются по порядку.
type OutboxDispatcher struct {
	logger     *zap.Logger
	repo       repository.OutboxRepository
	writer     MessageWriter
	batchSize  int
	interval   time.Duration
	maxRetries int
	backoff    time.Duration
	published  *observability.Counter
}

// NewOutboxDispatcher создаёт новый outbox dispatcher
func NewOutboxDispatcher(
	logger *zap.Logger,
	repo repository.OutboxRepository,
	writer MessageWriter,
	batchSize int,
	interval time.Duration,
	maxRetries int,
	backoff time.Duration,
) *OutboxDispatcher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &OutboxDispatcher{
		logger:     logger,
		repo:       repo,
		writer:     writer,
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
		backoff:    backoff,
		published: observability.NewCounter("github.com/shestoi/GoShop/internal/event/kafka",
			"shop.outbox.published", "Outbox events published to Kafka"),
	}
}

// Start обрабатывает батчи каждые interval до отмены ctx
func (d *OutboxDispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting outbox dispatcher",
		zap.Int("batch_size", d.batchSize),
		zap.Duration("interval", d.interval),
		zap.Int("max_retries", d.maxRetries),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("failed to process initial batch", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher context cancelled, stopping")
			return nil
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("failed to process batch", zap.Error(err))
			}
		}
	}
}

// processBatch обрабатывает один батч; ошибка отдельного события не прерывает батч
func (d *OutboxDispatcher) processBatch(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	events, err := d.repo.GetPendingOutboxEvents(ctx, d.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	d.logger.Debug("processing outbox batch", zap.Int("count", len(events)))

	for _, e := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.processEvent(ctx, e); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("failed to process event",
				zap.Error(err),
				zap.String("event_id", e.EventID),
				zap.String("topic", e.Topic),
			)
		}
	}
	return nil
}

// processEvent публикует событие с retry; после maxRetries помечает failed
func (d *OutboxDispatcher) processEvent(ctx context.Context, e repository.OutboxEvent) error {
	msg := kafka.Message{
		Topic: e.Topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.EventID)},
			{Key: "event_type", Value: []byte(e.EventType)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		err := d.writer.WriteMessages(ctx, msg)
		if err == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if markErr := d.repo.MarkOutboxEventSent(ctx, e.EventID); markErr != nil {
				// событие уйдёт повторно в следующем цикле; notifier отсеет дубль по inbox
				return fmt.Errorf("mark event sent: %w", markErr)
			}
			d.published.Add(ctx, 1, attribute.String("event_type", e.EventType))
			d.logger.Info("outbox event published",
				zap.String("event_id", e.EventID),
				zap.String("topic", e.Topic),
				zap.String("aggregate_id", e.AggregateID),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		d.logger.Warn("failed to publish outbox event",
			zap.Error(err),
			zap.String("event_id", e.EventID),
			zap.String("topic", e.Topic),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", d.maxRetries),
		)

		if attempt < d.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	errMsg := fmt.Sprintf("failed after %d attempts: %v", d.maxRetries, lastErr)
	if markErr := d.repo.MarkOutboxEventFailed(ctx, e.EventID, errMsg); markErr != nil {
		return fmt.Errorf("mark event failed: %w", markErr)
	}
	return fmt.Errorf("failed to publish event after %d attempts: %w", d.maxRetries, lastErr)
}

// Close закрывает Kafka writer
func (d *OutboxDispatcher) Close() error {
	d.logger.Info("closing outbox dispatcher")
	return d.writer.Close()
}
