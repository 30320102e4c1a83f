package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType направление движения
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

// Reason причина движения
type Reason string

const (
	ReasonPurchase     Reason = "PURCHASE"
	ReasonReturn       Reason = "RETURN"
	ReasonAdjustment   Reason = "ADJUSTMENT"
	ReasonCancellation Reason = "CANCELLATION"
	ReasonSale         Reason = "SALE"
	ReasonWriteOff     Reason = "WRITE_OFF"
	ReasonDefect       Reason = "DEFECT"
)

// ProductSnapshot отображаемые поля товара на момент записи
type ProductSnapshot struct {
	Name         string
	Image        string
	CategoryName string
	Color        string
	Size         string
}

// InventoryTransaction неизменяемая запись складского журнала.
// ProductID становится nil после удаления товара, снимок остаётся.
type InventoryTransaction struct {
	ID              int64
	Type            TransactionType
	Reason          Reason
	ProductID       *int64
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TotalPrice      decimal.Decimal
	Snapshot        ProductSnapshot
	StockAfter      int64
	UserID          string
	CustomerID      *int64
	OrderID         *int64
	Tags            []string
	Note            string
	CreatedAt       time.Time
}

// TransactionFilter фильтры журнала; диапазон дат полуоткрытый [From, To)
type TransactionFilter struct {
	Type       *TransactionType
	Reason     *Reason
	ProductID  *int64
	CustomerID *int64
	OrderID    *int64
	Tag        string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TransactionCounts агрегаты по всему отфильтрованному набору, а не по странице
type TransactionCounts struct {
	Total     int64
	In        int64
	Out       int64
	Returning int64
	Tags      map[string]int64
}

// ProductQuantity товар и суммарное количество
type ProductQuantity struct {
	ProductID *int64
	Name      string
	Quantity  int64
}

// Statistics сводка движений за период
type Statistics struct {
	QuantityIn  int64
	QuantityOut int64
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	ByReason    map[Reason]int64
	TopProducts []ProductQuantity
}

// BuildTransactionFunc строит запись по заблокированной строке товара.
// Вызывается внутри транзакции БД; ошибка откатывает всё.
type BuildTransactionFunc func(p Product) (InventoryTransaction, error)

// TransactionEventFunc строит outbox событие по сохранённой записи
type TransactionEventFunc func(t InventoryTransaction) (OutboxEvent, error)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryRepository --dir=. --output=./mocks --outpkg=mocks

// InventoryRepository складской журнал
type InventoryRepository interface {
	// CreateTransactionTx блокирует товар (SELECT ... FOR UPDATE), вызывает build,
	// сохраняет запись, остаток StockAfter и outbox событие одним коммитом
	CreateTransactionTx(ctx context.Context, productID int64, build BuildTransactionFunc, event TransactionEventFunc) (InventoryTransaction, error)
	GetTransaction(ctx context.Context, id int64) (InventoryTransaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]InventoryTransaction, error)
	CountTransactions(ctx context.Context, f TransactionFilter) (TransactionCounts, error)
	Statistics(ctx context.Context, from, to time.Time, topLimit int) (Statistics, error)
}
