package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

// InboxRepository реализует repository.InboxRepository используя PostgreSQL
type InboxRepository struct {
	pool *pgxpool.Pool
}

// NewInboxRepository создаёт новый PostgreSQL репозиторий inbox
func NewInboxRepository(pool *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{pool: pool}
}

// InsertInboxEvent возвращает inserted=true если событие впервые обработано, false если duplicate
func (r *InboxRepository) InsertInboxEvent(ctx context.Context, e repository.InboxEvent) (bool, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifier_inbox_events (event_id, event_type, aggregate_id, occurred_at, topic, partition, message_offset)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		e.EventID, e.EventType, e.AggregateID, e.OccurredAt, e.Topic, e.Partition, e.Offset)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *InboxRepository) DeleteInboxEvent(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifier_inbox_events WHERE event_id = $1::uuid`, eventID)
	return err
}
