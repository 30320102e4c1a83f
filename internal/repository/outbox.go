package repository

import (
	"context"
	"time"
)

// Статусы outbox событий
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxEvent событие, записанное в одной транзакции с бизнес-данными
type OutboxEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int
	LastError   string
	CreatedAt   time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OutboxRepository --dir=. --output=./mocks --outpkg=mocks

// OutboxRepository очередь событий для OutboxDispatcher
type OutboxRepository interface {
	GetPendingOutboxEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkOutboxEventSent(ctx context.Context, eventID string) error
	MarkOutboxEventFailed(ctx context.Context, eventID string, errMsg string) error
}

// InboxEvent обработанное notifier событие
type InboxEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	OccurredAt  time.Time
	Topic       string
	Partition   int
	Offset      int64
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InboxRepository --dir=. --output=./mocks --outpkg=mocks

// InboxRepository идемпотентность обработки событий в notifier
type InboxRepository interface {
	// InsertInboxEvent возвращает inserted=false, если событие уже обработано
	InsertInboxEvent(ctx context.Context, e InboxEvent) (bool, error)
	// DeleteInboxEvent снимает отметку, если обработка после вставки не удалась
	DeleteInboxEvent(ctx context.Context, eventID string) error
}
