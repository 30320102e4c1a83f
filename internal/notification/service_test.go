package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	eventkafka "github.com/shestoi/GoShop/internal/event/kafka"
	"github.com/shestoi/GoShop/internal/repository"
	repomocks "github.com/shestoi/GoShop/internal/repository/mocks"
	"github.com/shestoi/GoShop/internal/templates"
)

// recordingSender запоминает отправленные тексты; err возвращается на каждый вызов
type recordingSender struct {
	texts []string
	err   error
}

func (s *recordingSender) Send(_ context.Context, chatID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}

func newTestService(t *testing.T, inbox repository.InboxRepository, sender *recordingSender) *Service {
	t.Helper()
	renderer, err := templates.NewRenderer(zap.NewNop())
	require.NoError(t, err)
	return NewService(zap.NewNop(), inbox, sender, renderer, "-100")
}

func newEnvelope(t *testing.T, typ string, data any) event.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return event.Envelope{
		EventID: "0d5c1e5e-2f59-4a8e-9d0b-1f7e1f8b9a10", EventType: typ, EventVersion: event.Version,
		OccurredAt: time.Now().UTC(), AggregateID: "7", Data: raw,
	}
}

var src = event.Source{Topic: "shop.order.created", Partition: 1, Offset: 42}

func TestService_HandleOrderCreated(t *testing.T) {
	inbox := repomocks.NewInboxRepository(t)
	sender := &recordingSender{}
	svc := newTestService(t, inbox, sender)

	env := newEnvelope(t, event.TypeOrderCreated, event.OrderCreated{
		OrderID: 7, Number: "ORD-1", Total: "10.00",
		Items: []event.OrderItem{{Name: "Mug", Quantity: 1, TotalPrice: "10.00"}},
	})
	inbox.On("InsertInboxEvent", mock.Anything, mock.MatchedBy(func(e repository.InboxEvent) bool {
		return e.EventID == env.EventID && e.Topic == src.Topic && e.Offset == 42 && e.Partition == 1
	})).Return(true, nil)

	require.NoError(t, svc.Handle(context.Background(), env, src))
	require.Len(t, sender.texts, 1)
	require.Contains(t, sender.texts[0], "ORD-1")
}

func TestService_HandleDuplicate(t *testing.T) {
	inbox := repomocks.NewInboxRepository(t)
	sender := &recordingSender{}
	svc := newTestService(t, inbox, sender)

	inbox.On("InsertInboxEvent", mock.Anything, mock.Anything).Return(false, nil)

	env := newEnvelope(t, event.TypeOrderStatusChanged, event.OrderStatusChanged{Number: "ORD-1", From: "NEW", Status: "CONFIRMED"})
	require.NoError(t, svc.Handle(context.Background(), env, src))
	require.Empty(t, sender.texts)
}

func TestService_HandleTransaction(t *testing.T) {
	orderID := int64(3)
	tests := []struct {
		name string
		data event.TransactionCreated
		want []string
	}{
		{
			name: "manual transaction",
			data: event.TransactionCreated{TransactionID: 1, Type: "IN", Reason: "PURCHASE", ProductName: "Mug", Quantity: 10, StockAfter: 12, Threshold: 5},
			want: []string{"Приход (PURCHASE) #1"},
		},
		{
			name: "manual transaction with low stock",
			data: event.TransactionCreated{TransactionID: 2, Type: "OUT", Reason: "DEFECT", ProductName: "Mug", Quantity: 8, StockAfter: 4, LowStock: true, Threshold: 5},
			want: []string{"Расход (DEFECT) #2", "Низкий остаток: Mug"},
		},
		{
			name: "order sale without low stock is silent",
			data: event.TransactionCreated{TransactionID: 3, Type: "OUT", Reason: "SALE", OrderID: &orderID, StockAfter: 10, Threshold: 5},
		},
		{
			name: "order sale with low stock",
			data: event.TransactionCreated{TransactionID: 4, Type: "OUT", Reason: "SALE", ProductName: "Cap", OrderID: &orderID, StockAfter: 1, LowStock: true, Threshold: 5},
			want: []string{"Низкий остаток: Cap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inbox := repomocks.NewInboxRepository(t)
			inbox.On("InsertInboxEvent", mock.Anything, mock.Anything).Return(true, nil)
			sender := &recordingSender{}
			svc := newTestService(t, inbox, sender)

			require.NoError(t, svc.Handle(context.Background(), newEnvelope(t, event.TypeTransactionCreated, tt.data), src))
			require.Len(t, sender.texts, len(tt.want))
			for i, want := range tt.want {
				require.Contains(t, sender.texts[i], want)
			}
		})
	}
}

func TestService_SendFailureReleasesInbox(t *testing.T) {
	inbox := repomocks.NewInboxRepository(t)
	sender := &recordingSender{err: errors.New("telegram timeout")}
	svc := newTestService(t, inbox, sender)

	env := newEnvelope(t, event.TypeOrderStatusChanged, event.OrderStatusChanged{Number: "ORD-1", From: "NEW", Status: "CANCELLED"})
	inbox.On("InsertInboxEvent", mock.Anything, mock.Anything).Return(true, nil)
	inbox.On("DeleteInboxEvent", mock.Anything, env.EventID).Return(nil)

	err := svc.Handle(context.Background(), env, src)
	require.ErrorContains(t, err, "telegram timeout")
}

func TestService_PermanentErrors(t *testing.T) {
	svc := newTestService(t, repomocks.NewInboxRepository(t), &recordingSender{})

	err := svc.Handle(context.Background(), newEnvelope(t, "order.deleted", map[string]any{}), src)
	require.ErrorIs(t, err, event.ErrUnsupported)

	future := newEnvelope(t, event.TypeOrderCreated, event.OrderCreated{})
	future.EventVersion = event.Version + 1
	require.ErrorIs(t, svc.Handle(context.Background(), future, src), event.ErrUnsupported)

	broken := newEnvelope(t, event.TypeOrderCreated, event.OrderCreated{})
	broken.Data = json.RawMessage(`{"items": "oops"}`)
	var parseErr *eventkafka.ParseError
	require.ErrorAs(t, svc.Handle(context.Background(), broken, src), &parseErr)
}
