package event

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	platformkafka "github.com/shestoi/GoShop/platform/kafka"

	"github.com/shestoi/GoShop/internal/repository"
)

func TestNewOutboxEvent_EnvelopeRoundTrip(t *testing.T) {
	topics := platformkafka.DefaultConfig()
	productID := int64(7)
	tr := repository.InventoryTransaction{
		ID:         11,
		Type:       repository.TransactionOut,
		Reason:     repository.ReasonSale,
		ProductID:  &productID,
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("19.9"),
		Snapshot:   repository.ProductSnapshot{Name: "Mug"},
		StockAfter: 3,
	}

	ev, err := NewOutboxEvent(topics, TypeTransactionCreated, "7", TransactionCreatedFrom(tr, 5))
	require.NoError(t, err)
	require.Equal(t, "shop.inventory.transaction.created", ev.Topic)
	require.Equal(t, repository.OutboxPending, ev.Status)
	require.NotEmpty(t, ev.EventID)

	env, err := Decode(ev.Payload)
	require.NoError(t, err)
	require.Equal(t, ev.EventID, env.EventID)
	require.Equal(t, Version, env.EventVersion)

	var data TransactionCreated
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data.LowStock)
	require.Equal(t, "19.90", data.TotalPrice)
	require.Equal(t, "Mug", data.ProductName)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)

	_, err = Decode([]byte(`{"event_type":"order.created"}`))
	require.Error(t, err)
}
