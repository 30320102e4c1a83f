package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counter тонкая обёртка над metric.Int64Counter.
// Создаётся через глобальный MeterProvider, поэтому работает и с noop.
type Counter struct {
	c metric.Int64Counter
}

// NewCounter создаёт счётчик; при ошибке регистрации возвращает noop счётчик
func NewCounter(meterName, name, description string) *Counter {
	c, err := otel.Meter(meterName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return &Counter{}
	}
	return &Counter{c: c}
}

// Add увеличивает счётчик; attrs передаются парами ключ/значение
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	if c == nil || c.c == nil {
		return
	}
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}
