package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation некорректный запрос; конкретика в ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized нет сессии или она истекла
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden недостаточно прав
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition недопустимая смена статуса заказа
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOTPInvalid неверный или истёкший код
	ErrOTPInvalid = errors.New("invalid or expired code")
	// ErrOTPTooManyAttempts исчерпаны попытки ввода кода
	ErrOTPTooManyAttempts = errors.New("too many attempts")
	// ErrOTPTooFrequent код запрошен раньше интервала повторной отправки
	ErrOTPTooFrequent = errors.New("code requested too frequently")
)

// ValidationError ошибка валидации конкретного поля
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap позволяет проверять errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
