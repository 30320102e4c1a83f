package repository

import (
	"context"
	"time"
)

// AuditEntry запись аудита административного действия
type AuditEntry struct {
	ID       string
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Payload  map[string]any
	At       time.Time
}

// AuditFilter выборка по сущности; пустой EntityID: все записи сущности
type AuditFilter struct {
	Entity   string
	EntityID string
	Limit    int
	Offset   int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=AuditRepository --dir=. --output=./mocks --outpkg=mocks

// AuditRepository append-only журнал аудита
type AuditRepository interface {
	Append(ctx context.Context, e AuditEntry) error
	List(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}
