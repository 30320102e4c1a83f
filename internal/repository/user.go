package repository

import (
	"context"
	"time"
)

// Role роль пользователя
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User пользователь, вошедший по телефону
type User struct {
	ID        string
	Phone     string
	Role      Role
	CreatedAt time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=UserRepository --dir=. --output=./mocks --outpkg=mocks

// UserRepository хранилище пользователей
type UserRepository interface {
	// CreateUser возвращает ErrAlreadyExists при повторном телефоне
	CreateUser(ctx context.Context, user User) error
	GetByPhone(ctx context.Context, phone string) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	UpdateRole(ctx context.Context, userID string, role Role) error
}
