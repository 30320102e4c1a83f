package service

import "github.com/shestoi/GoShop/internal/repository"

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	UserID string
	Role   repository.Role
}

// IsAdmin true для роли ADMIN
func (a Actor) IsAdmin() bool {
	return a.Role == repository.RoleAdmin
}

func requireAdmin(a Actor) error {
	if a.UserID == "" {
		return ErrUnauthorized
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
