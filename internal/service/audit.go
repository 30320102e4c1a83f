package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

const auditWriteTimeout = 3 * time.Second

// AuditService журнал административных действий в MongoDB
type AuditService struct {
	logger *zap.Logger
	repo   repository.AuditRepository
	now    func() time.Time
}

// NewAuditService создаёт новый экземпляр AuditService
func NewAuditService(logger *zap.Logger, repo repository.AuditRepository) *AuditService {
	return &AuditService{logger: logger, repo: repo, now: time.Now}
}

// Record пишет запись аудита. Ошибка только логируется: запрос уже выполнен.
func (s *AuditService) Record(ctx context.Context, actorID string, action, entity, entityID string, payload map[string]any) {
	// запись не должна обрываться вместе с отменой HTTP запроса
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry := repository.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Payload:  payload,
		At:       s.now().UTC(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// List записи по сущности, новые первыми
func (s *AuditService) List(ctx context.Context, actor Actor, entity, entityID string, page Page) ([]repository.AuditEntry, Page, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, Page{}, err
	}
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil, Page{}, invalid("entity", "is required")
	}
	page = page.Normalize()
	entries, err := s.repo.List(ctx, repository.AuditFilter{
		Entity:   entity,
		EntityID: strings.TrimSpace(entityID),
		Limit:    page.Size,
		Offset:   page.Offset(),
	})
	if err != nil {
		return nil, Page{}, fmt.Errorf("list audit: %w", err)
	}
	return entries, page, nil
}
