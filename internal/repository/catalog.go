package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Category категория каталога
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Product товар каталога.
// Stock меняется только через складские транзакции, UpdateProduct его не трогает.
type Product struct {
	ID           int64
	Name         string
	Description  string
	CategoryID   *int64
	CategoryName string
	Color        string
	Size         string
	Price        decimal.Decimal
	Stock        int64
	ImageID      *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductFilter фильтры списка товаров; nil/пустые поля не применяются
type ProductFilter struct {
	CategoryID *int64
	Active     *bool
	Search     string
	// LowStockMax оставляет товары с stock <= LowStockMax
	LowStockMax *int64
	Limit       int
	Offset      int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CatalogRepository --dir=. --output=./mocks --outpkg=mocks

// CatalogRepository хранилище категорий и товаров
type CatalogRepository interface {
	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (Category, error)
	// DeleteCategory возвращает ErrConflict, если на категорию ссылаются товары
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	CountLowStock(ctx context.Context, threshold int64) (int64, error)
}
