package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DLQPublisher публикует необработанные сообщения в Dead Letter Queue
type DLQPublisher struct {
	logger *zap.Logger
	writer MessageWriter
	topic  string
	now    func() time.Time
}

// NewDLQPublisher создаёт DLQ publisher; topic: имя DLQ топика
func NewDLQPublisher(logger *zap.Logger, writer MessageWriter, topic string) *DLQPublisher {
	return &DLQPublisher{logger: logger, writer: writer, topic: topic, now: time.Now}
}

// DLQMessage сообщение в DLQ с исходными координатами и причиной
type DLQMessage struct {
	OriginalTopic     string    `json:"original_topic"`
	OriginalPartition int       `json:"original_partition"`
	OriginalOffset    int64     `json:"original_offset"`
	OriginalKey       string    `json:"original_key"`
	OriginalValue     string    `json:"original_value"`
	ErrorMessage      string    `json:"error_message"`
	FailedAt          time.Time `json:"failed_at"`
	EventType         string    `json:"event_type,omitempty"`
	EventID           string    `json:"event_id,omitempty"`
	AggregateID       string    `json:"aggregate_id,omitempty"`
}

// Publish пишет исходное сообщение и ошибку в DLQ.
// eventType, eventID, aggregateID пустые, если конверт не разобрался.
func (p *DLQPublisher) Publish(ctx context.Context, original kafka.Message, cause error, eventType, eventID, aggregateID string) error {
	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}
	payload, err := json.Marshal(DLQMessage{
		OriginalTopic:     original.Topic,
		OriginalPartition: original.Partition,
		OriginalOffset:    original.Offset,
		OriginalKey:       string(original.Key),
		OriginalValue:     string(original.Value),
		ErrorMessage:      errMsg,
		FailedAt:          p.now().UTC(),
		EventType:         eventType,
		EventID:           eventID,
		AggregateID:       aggregateID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	key := original.Key
	if aggregateID != "" {
		key = []byte(aggregateID)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: p.topic, Key: key, Value: payload}); err != nil {
		p.logger.Error("failed to publish message to DLQ",
			zap.Error(err),
			zap.String("original_topic", original.Topic),
			zap.Int("original_partition", original.Partition),
			zap.Int64("original_offset", original.Offset),
		)
		return err
	}

	p.logger.Info("message published to DLQ",
		zap.String("original_topic", original.Topic),
		zap.Int("original_partition", original.Partition),
		zap.Int64("original_offset", original.Offset),
		zap.String("error_message", errMsg),
	)
	return nil
}

// Close закрывает writer
func (p *DLQPublisher) Close() error {
	p.logger.Info("closing DLQ publisher")
	return p.writer.Close()
}
