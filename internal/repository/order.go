package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order заказ
type Order struct {
	ID              int64
	Number          string
	UserID          string
	CustomerID      *int64
	Status          OrderStatus
	DiscountPercent decimal.Decimal
	Total           decimal.Decimal
	Comment         string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem позиция заказа со снимком товара
type OrderItem struct {
	ID         int64
	ProductID  *int64
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Snapshot   ProductSnapshot
}

// OrderFilter фильтры списка заказов
type OrderFilter struct {
	Status     *OrderStatus
	UserID     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// OrderPlan результат построения заказа внутри транзакции БД
type OrderPlan struct {
	Order        Order
	Transactions []InventoryTransaction
}

// StatusPlan результат смены статуса: новый статус и складские движения (при отмене)
type StatusPlan struct {
	Status       OrderStatus
	Transactions []InventoryTransaction
}

// BuildOrderFunc получает заблокированные товары (по id) и строит заказ
type BuildOrderFunc func(products map[int64]Product) (OrderPlan, error)

// ChangeStatusFunc получает заказ и его заблокированные товары
type ChangeStatusFunc func(o Order, products map[int64]Product) (StatusPlan, error)

// OrderEventFunc строит outbox события по сохранённому заказу и его складским записям
type OrderEventFunc func(o Order, transactions []InventoryTransaction) ([]OutboxEvent, error)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderRepository --dir=. --output=./mocks --outpkg=mocks

// OrderRepository хранилище заказов
type OrderRepository interface {
	// CreateTx блокирует товары по возрастанию id, вызывает build и сохраняет
	// заказ, позиции, складские записи, остатки и outbox событие одним коммитом
	CreateTx(ctx context.Context, productIDs []int64, build BuildOrderFunc, event OrderEventFunc) (Order, error)
	// ChangeStatusTx блокирует заказ и его товары, применяет change одним коммитом
	ChangeStatusTx(ctx context.Context, orderID int64, change ChangeStatusFunc, event OrderEventFunc) (Order, error)
	GetByID(ctx context.Context, id int64) (Order, error)
	GetByNumber(ctx context.Context, number string) (Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	// CountOpenByUser число заказов пользователя в статусах NEW, CONFIRMED, SHIPPED
	CountOpenByUser(ctx context.Context, userID string) (int64, error)
}
