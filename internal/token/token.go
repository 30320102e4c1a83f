// Package token выпускает и проверяет GLOBAL токен: HS256 JWT, который читает фронтенд.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalid токен отсутствует, подделан или истёк
var ErrInvalid = errors.New("invalid global token")

// Counts счётчики, встроенные в токен
type Counts struct {
	Orders   int64 `json:"orders"`
	LowStock int64 `json:"low_stock"`
}

// Claims полезная нагрузка GLOBAL токена
type Claims struct {
	jwt.RegisteredClaims
	Role   string `json:"role"`
	Counts Counts `json:"cnt"`
}

// Manager подписывает и разбирает токены
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создаёт Manager с секретом и временем жизни токена
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает новый токен
func (m *Manager) Issue(userID, role string, counts Counts) (string, Claims, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role:   role,
		Counts: counts,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign global token: %w", err)
	}
	return signed, claims, nil
}

// Parse проверяет подпись, алгоритм и срок действия
func (m *Manager) Parse(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(m.now()) {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}

// TTL время жизни выпускаемых токенов
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ExpiresWithin true, если токен истекает раньше чем через d
func (m *Manager) ExpiresWithin(c Claims, d time.Duration) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Sub(m.now()) <= d
}
