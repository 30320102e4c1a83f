package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

// OutboxRepository реализует repository.OutboxRepository используя PostgreSQL
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository создаёт новый PostgreSQL репозиторий outbox
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// GetPendingOutboxEvents возвращает pending события в порядке создания
func (r *OutboxRepository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id::text, event_type, aggregate_id, topic, payload, status, attempts,
		        COALESCE(last_error, ''), created_at
		 FROM outbox_events
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2`, repository.OutboxPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]repository.OutboxEvent, 0, limit)
	for rows.Next() {
		var e repository.OutboxEvent
		if err := rows.Scan(&e.EventID, &e.EventType, &e.AggregateID, &e.Topic, &e.Payload,
			&e.Status, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkOutboxEventSent(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events
		 SET status = $2, attempts = attempts + 1, sent_at = now(), last_error = NULL
		 WHERE event_id = $1::uuid`, eventID, repository.OutboxSent)
	return err
}

func (r *OutboxRepository) MarkOutboxEventFailed(ctx context.Context, eventID string, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events
		 SET status = $2, attempts = attempts + 1, last_error = $3
		 WHERE event_id = $1::uuid`, eventID, repository.OutboxFailed, errMsg)
	return err
}

// insertOutboxEvent пишет событие в рамках бизнес-транзакции
func insertOutboxEvent(ctx context.Context, q querier, e repository.OutboxEvent) error {
	_, err := q.Exec(ctx,
		`INSERT INTO outbox_events (event_id, event_type, aggregate_id, topic, payload, status)
		 VALUES ($1::uuid, $2, $3, $4, $5::jsonb, $6)`,
		e.EventID, e.EventType, e.AggregateID, e.Topic, string(e.Payload), repository.OutboxPending)
	return err
}
