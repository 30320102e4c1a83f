//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shestoi/GoShop/internal/repository"
)

func TestAuditRepository_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	repo := NewAuditRepository(client, "shop_test")

	base := time.Now().Add(-time.Minute).UTC().Truncate(time.Millisecond)
	for i, action := range []string{"product.create", "product.update", "product.delete"} {
		err := repo.Append(ctx, repository.AuditEntry{
			ActorID:  "admin-1",
			Action:   action,
			Entity:   "product",
			EntityID: "42",
			Payload:  map[string]any{"step": i},
			At:       base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Append(ctx, repository.AuditEntry{
		ActorID: "admin-1", Action: "setting.update", Entity: "setting", EntityID: "inventory.low_stock_threshold",
	}))

	entries, err := repo.List(ctx, repository.AuditFilter{Entity: "product", EntityID: "42", Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "product.delete", entries[0].Action)
	require.NotEmpty(t, entries[0].ID)

	entries, err = repo.List(ctx, repository.AuditFilter{Entity: "product", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "product.update", entries[0].Action)

	entries, err = repo.List(ctx, repository.AuditFilter{Entity: "setting"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
