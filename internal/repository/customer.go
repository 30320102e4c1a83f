package repository

import (
	"context"
	"time"
)

// Customer покупатель
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerFilter поиск по имени или телефону
type CustomerFilter struct {
	Search string
	Limit  int
	Offset int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CustomerRepository --dir=. --output=./mocks --outpkg=mocks

// CustomerRepository хранилище покупателей
type CustomerRepository interface {
	// Create возвращает ErrAlreadyExists при повторном телефоне
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) (Customer, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context, f CustomerFilter) ([]Customer, int64, error)
}
