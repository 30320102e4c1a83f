// Package event описывает доменные события, которые shop пишет в outbox,
// а notifier читает из Kafka.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/GoShop/internal/repository"
)

// Типы событий; полное имя топика строится через Topics
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeTransactionCreated = "inventory.transaction.created"
)

// ErrUnsupported тип или версия события не поддерживаются; повтор не поможет
var ErrUnsupported = errors.New("unsupported event")

// Source координаты сообщения в Kafka
type Source struct {
	Topic     string
	Partition int
	Offset    int64
}

// Version текущая версия формата конверта
const Version = 1

// Topics резолвит тип события в имя топика (реализуется platform/kafka.Config)
type Topics interface {
	Topic(eventType string) string
}

// Envelope конверт события в Kafka
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	AggregateID  string          `json:"aggregate_id"`
	Data         json.RawMessage `json:"data"`
}

// OrderItem позиция заказа в событии
type OrderItem struct {
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

// OrderCreated данные события order.created
type OrderCreated struct {
	OrderID    int64       `json:"order_id"`
	Number     string      `json:"number"`
	UserID     string      `json:"user_id"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	Total      string      `json:"total"`
	Comment    string      `json:"comment,omitempty"`
	Items      []OrderItem `json:"items"`
}

// OrderStatusChanged данные события order.status_changed
type OrderStatusChanged struct {
	OrderID int64  `json:"order_id"`
	Number  string `json:"number"`
	From    string `json:"from"`
	Status  string `json:"status"`
	Total   string `json:"total"`
}

// TransactionCreated данные события inventory.transaction.created.
// LowStock вычисляется при записи по текущему порогу настроек.
type TransactionCreated struct {
	TransactionID int64    `json:"transaction_id"`
	Type          string   `json:"type"`
	Reason        string   `json:"reason"`
	ProductID     *int64   `json:"product_id,omitempty"`
	ProductName   string   `json:"product_name"`
	Quantity      int64    `json:"quantity"`
	TotalPrice    string   `json:"total_price"`
	StockAfter    int64    `json:"stock_after"`
	LowStock      bool     `json:"low_stock"`
	Threshold     int64    `json:"threshold"`
	OrderID       *int64   `json:"order_id,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// NewOutboxEvent упаковывает данные в конверт и строит строку outbox
func NewOutboxEvent(topics Topics, eventType, aggregateID string, data any) (repository.OutboxEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return repository.OutboxEvent{}, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: Version,
		OccurredAt:   time.Now().UTC(),
		AggregateID:  aggregateID,
		Data:         raw,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return repository.OutboxEvent{}, fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return repository.OutboxEvent{
		EventID:     env.EventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Topic:       topics.Topic(eventType),
		Payload:     payload,
		Status:      repository.OutboxPending,
	}, nil
}

// OrderCreatedFrom собирает данные события из сохранённого заказа
func OrderCreatedFrom(o repository.Order) OrderCreated {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			Name:       it.Snapshot.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			TotalPrice: it.TotalPrice.StringFixed(2),
		})
	}
	return OrderCreated{
		OrderID:    o.ID,
		Number:     o.Number,
		UserID:     o.UserID,
		CustomerID: o.CustomerID,
		Total:      o.Total.StringFixed(2),
		Comment:    o.Comment,
		Items:      items,
	}
}

// TransactionCreatedFrom собирает данные события из сохранённой записи журнала
func TransactionCreatedFrom(t repository.InventoryTransaction, threshold int64) TransactionCreated {
	return TransactionCreated{
		TransactionID: t.ID,
		Type:          string(t.Type),
		Reason:        string(t.Reason),
		ProductID:     t.ProductID,
		ProductName:   t.Snapshot.Name,
		Quantity:      t.Quantity,
		TotalPrice:    t.TotalPrice.StringFixed(2),
		StockAfter:    t.StockAfter,
		LowStock:      t.StockAfter <= threshold,
		Threshold:     threshold,
		OrderID:       t.OrderID,
		Tags:          t.Tags,
	}
}

// Decode разбирает конверт из значения Kafka сообщения
func Decode(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" || env.EventType == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event_id or event_type")
	}
	return env, nil
}
