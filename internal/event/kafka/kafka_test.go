package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/repository/mocks"
)

// fakeWriter запоминает сообщения; первые failN вызовов возвращают err
type fakeWriter struct {
	mu    sync.Mutex
	msgs  []kafka.Message
	failN int
	err   error
	calls int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls <= w.failN {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader отдаёт заранее заданные сообщения, затем ждёт отмены ctx
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type handlerFunc func(ctx context.Context, env event.Envelope, src event.Source) error

func (f handlerFunc) Handle(ctx context.Context, env event.Envelope, src event.Source) error {
	return f(ctx, env, src)
}

func envelope(t *testing.T, id, typ string) []byte {
	t.Helper()
	raw, err := json.Marshal(event.Envelope{
		EventID: id, EventType: typ, EventVersion: event.Version,
		OccurredAt: time.Now().UTC(), AggregateID: "42", Data: json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	return raw
}

func TestOutboxDispatcher_PublishesAndMarksSent(t *testing.T) {
	repo := mocks.NewOutboxRepository(t)
	writer := &fakeWriter{}
	d := NewOutboxDispatcher(zap.NewNop(), repo, writer, 10, time.Second, 3, time.Millisecond)

	repo.On("GetPendingOutboxEvents", mock.Anything, 10).Return([]repository.OutboxEvent{
		{EventID: "e1", EventType: "order.created", AggregateID: "7", Topic: "shop.order.created", Payload: []byte(`{"a":1}`)},
	}, nil)
	repo.On("MarkOutboxEventSent", mock.Anything, "e1").Return(nil)

	require.NoError(t, d.processBatch(context.Background()))
	require.Len(t, writer.msgs, 1)
	require.Equal(t, "shop.order.created", writer.msgs[0].Topic)
	require.Equal(t, []byte("7"), writer.msgs[0].Key)
}

func TestOutboxDispatcher_RetriesThenMarksFailed(t *testing.T) {
	repo := mocks.NewOutboxRepository(t)
	writer := &fakeWriter{failN: 3, err: errors.New("broker down")}
	d := NewOutboxDispatcher(zap.NewNop(), repo, writer, 10, time.Second, 3, time.Millisecond)

	repo.On("MarkOutboxEventFailed", mock.Anything, "e1", mock.MatchedBy(func(msg string) bool {
		return msg == "failed after 3 attempts: broker down"
	})).Return(nil)

	err := d.processEvent(context.Background(), repository.OutboxEvent{EventID: "e1", Topic: "t", AggregateID: "1"})
	require.Error(t, err)
	require.Equal(t, 3, writer.calls)
}

func TestOutboxDispatcher_RecoversWithinRetries(t *testing.T) {
	repo := mocks.NewOutboxRepository(t)
	writer := &fakeWriter{failN: 1, err: errors.New("leader not available")}
	d := NewOutboxDispatcher(zap.NewNop(), repo, writer, 10, time.Second, 3, time.Millisecond)

	repo.On("MarkOutboxEventSent", mock.Anything, "e1").Return(nil)

	require.NoError(t, d.processEvent(context.Background(), repository.OutboxEvent{EventID: "e1", Topic: "t", AggregateID: "1"}))
	require.Equal(t, 2, writer.calls)
	require.Len(t, writer.msgs, 1)
}

func TestConsumer_Flow(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "shop.order.created", Offset: 1, Value: envelope(t, "ok", "order.created")},
		{Topic: "shop.order.created", Offset: 2, Value: []byte("not json")},
		{Topic: "shop.order.created", Offset: 3, Value: envelope(t, "flaky", "order.created")},
		{Topic: "shop.order.created", Offset: 4, Value: envelope(t, "broken", "order.created")},
		{Topic: "shop.order.created", Offset: 5, Value: envelope(t, "unknown", "order.deleted")},
	}}
	dlqWriter := &fakeWriter{}
	dlq := NewDLQPublisher(zap.NewNop(), dlqWriter, "shop.notifier.dlq")

	var mu sync.Mutex
	calls := map[string]int{}
	var offsets []int64
	handler := handlerFunc(func(_ context.Context, env event.Envelope, src event.Source) error {
		mu.Lock()
		defer mu.Unlock()
		calls[env.EventID]++
		offsets = append(offsets, src.Offset)
		switch {
		case env.EventID == "flaky" && calls["flaky"] < 2:
			return errors.New("telegram timeout")
		case env.EventID == "broken":
			return errors.New("always fails")
		case env.EventType == "order.deleted":
			return event.ErrUnsupported
		}
		return nil
	})

	c := NewConsumer(zap.NewNop(), reader, handler, dlq, 3, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(reader.commits()) == 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, []int64{1, 2, 3, 4, 5}, reader.commits())
	mu.Lock()
	require.Equal(t, 2, calls["flaky"])
	require.Equal(t, 3, calls["broken"])
	require.Equal(t, 1, calls["unknown"])
	require.Equal(t, []int64{1, 3, 3, 4, 4, 4, 5}, offsets)
	mu.Unlock()

	// в DLQ: битый JSON, исчерпанные попытки, неподдерживаемый тип
	dlqWriter.mu.Lock()
	defer dlqWriter.mu.Unlock()
	require.Len(t, dlqWriter.msgs, 3)
	var first DLQMessage
	require.NoError(t, json.Unmarshal(dlqWriter.msgs[0].Value, &first))
	require.Equal(t, int64(2), first.OriginalOffset)
	require.Equal(t, "not json", first.OriginalValue)
	require.Equal(t, "shop.notifier.dlq", dlqWriter.msgs[0].Topic)

	var exhausted DLQMessage
	require.NoError(t, json.Unmarshal(dlqWriter.msgs[1].Value, &exhausted))
	require.Equal(t, "broken", exhausted.EventID)
	require.Equal(t, []byte("42"), dlqWriter.msgs[1].Key)
}

// Пока DLQ недоступен, offset не коммитится и следующие сообщения не читаются
func TestConsumer_DLQFailureBlocksCommit(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "shop.order.created", Offset: 1, Value: []byte("not json")},
		{Topic: "shop.order.created", Offset: 2, Value: envelope(t, "next", "order.created")},
	}}
	dlqWriter := &fakeWriter{failN: 3, err: errors.New("broker unavailable")}
	dlq := NewDLQPublisher(zap.NewNop(), dlqWriter, "shop.notifier.dlq")

	var mu sync.Mutex
	var handled []string
	handler := handlerFunc(func(_ context.Context, env event.Envelope, _ event.Source) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, env.EventID)
		return nil
	})

	c := NewConsumer(zap.NewNop(), reader, handler, dlq, 1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(reader.commits()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, []int64{1, 2}, reader.commits())
	dlqWriter.mu.Lock()
	require.Equal(t, 4, dlqWriter.calls)
	require.Len(t, dlqWriter.msgs, 1)
	dlqWriter.mu.Unlock()
	mu.Lock()
	require.Equal(t, []string{"next"}, handled)
	mu.Unlock()
}

func TestConsumer_StopsWithoutCommitWhileDLQDown(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "shop.order.created", Offset: 1, Value: []byte("not json")},
		{Topic: "shop.order.created", Offset: 2, Value: envelope(t, "next", "order.created")},
	}}
	dlqWriter := &fakeWriter{failN: 1 << 30, err: errors.New("broker unavailable")}
	dlq := NewDLQPublisher(zap.NewNop(), dlqWriter, "shop.notifier.dlq")
	handler := handlerFunc(func(context.Context, event.Envelope, event.Source) error {
		t.Error("next message must not be read while the previous one is pending")
		return nil
	})

	c := NewConsumer(zap.NewNop(), reader, handler, dlq, 1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool {
		dlqWriter.mu.Lock()
		defer dlqWriter.mu.Unlock()
		return dlqWriter.calls >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Empty(t, reader.commits())
	reader.mu.Lock()
	require.Len(t, reader.queue, 1)
	reader.mu.Unlock()
}
