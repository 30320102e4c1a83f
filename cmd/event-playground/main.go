// Package main публикует тестовое событие shop в Kafka, минуя outbox.
// Используется для ручной проверки notifier: шаблонов, inbox и бота.
//
// Переменные окружения:
//   - KAFKA_BROKERS (по умолчанию localhost:19092)
//   - EVENT_TYPE: order.created | order.status_changed | inventory.transaction.created
package main

import (
	"context"
	"os"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	eventkafka "github.com/shestoi/GoShop/internal/event/kafka"
	platformkafka "github.com/shestoi/GoShop/platform/kafka"
	platformlogging "github.com/shestoi/GoShop/platform/logging"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "event-playground",
		Env:         "local",
		Level:       "info",
		Format:      "console",
		AddCaller:   true,
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	cfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&cfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}

	eventType := os.Getenv("EVENT_TYPE")
	if eventType == "" {
		eventType = event.TypeOrderCreated
	}
	aggregateID, data, ok := sample(eventType)
	if !ok {
		logger.Error("unknown event type", zap.String("event_type", eventType))
		os.Exit(1)
	}

	e, err := event.NewOutboxEvent(cfg, eventType, aggregateID, data)
	if err != nil {
		logger.Error("failed to build event", zap.Error(err))
		os.Exit(1)
	}

	writer := eventkafka.NewWriter(cfg.Brokers)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close kafka writer", zap.Error(err))
		}
	}()

	log := logger.With(
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", e.Topic),
		zap.String("event_id", e.EventID),
		zap.String("event_type", eventType),
	)
	log.Info("sending event to kafka")

	err = writer.WriteMessages(ctx, kafka.Message{
		Topic: e.Topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.EventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		log.Error("failed to send event", zap.Error(err))
		os.Exit(1)
	}
	log.Info("event sent successfully")
}

// sample возвращает тестовые данные события
func sample(eventType string) (string, any, bool) {
	switch eventType {
	case event.TypeOrderCreated:
		return "1", event.OrderCreated{
			OrderID: 1,
			Number:  "000001",
			UserID:  "playground",
			Total:   "1500.00",
			Items: []event.OrderItem{
				{Name: "Кофе в зёрнах", Quantity: 2, UnitPrice: "750.00", TotalPrice: "1500.00"},
			},
		}, true
	case event.TypeOrderStatusChanged:
		return "1", event.OrderStatusChanged{
			OrderID: 1,
			Number:  "000001",
			From:    "NEW",
			Status:  "CONFIRMED",
			Total:   "1500.00",
		}, true
	case event.TypeTransactionCreated:
		productID := int64(1)
		return "1", event.TransactionCreated{
			TransactionID: 1,
			Type:          "OUT",
			Reason:        "WRITE_OFF",
			ProductID:     &productID,
			ProductName:   "Кофе в зёрнах",
			Quantity:      3,
			TotalPrice:    "2250.00",
			StockAfter:    2,
			LowStock:      true,
			Threshold:     5,
		}, true
	default:
		return "", nil, false
	}
}
