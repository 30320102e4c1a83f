package repository

import "errors"

var (
	// ErrNotFound запись не найдена в хранилище
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists нарушение уникальности (телефон, имя категории, ключ)
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict запись нельзя изменить или удалить из-за связанных данных
	ErrConflict = errors.New("conflict")
	// ErrInsufficientStock списание уводит остаток в минус
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductInactive товар выключен и не участвует в движениях
	ErrProductInactive = errors.New("product is inactive")
)
