package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
	repoMocks "github.com/shestoi/GoShop/internal/repository/mocks"
)

func TestAuditService_Record(t *testing.T) {
	repo := repoMocks.NewAuditRepository(t)
	svc := NewAuditService(zap.NewNop(), repo)
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	// запись идёт даже если контекст запроса уже отменён
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo.On("Append", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), repository.AuditEntry{
		ActorID:  "admin-1",
		Action:   "product.update",
		Entity:   "product",
		EntityID: "1",
		Payload:  map[string]any{"price": "10.00"},
		At:       at,
	}).Return(errors.New("mongo down")).Once()

	svc.Record(ctx, "admin-1", "product.update", "product", "1", map[string]any{"price": "10.00"})
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()
	repo := repoMocks.NewAuditRepository(t)
	svc := NewAuditService(zap.NewNop(), repo)

	repo.On("List", ctx, repository.AuditFilter{Entity: "order", EntityID: "7", Limit: DefaultPageSize}).
		Return([]repository.AuditEntry{{Action: "order.status"}}, nil).Once()

	entries, page, err := svc.List(ctx, adminActor, "order", "7", Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, page.Number)

	_, _, err = svc.List(ctx, adminActor, " ", "", Page{})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.List(ctx, userActor, "order", "", Page{})
	require.ErrorIs(t, err, ErrForbidden)
}
