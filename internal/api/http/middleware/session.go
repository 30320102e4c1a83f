package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/authctx"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
	"github.com/shestoi/GoShop/internal/token"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Authenticator --dir=. --output=./mocks --outpkg=mocks

// Authenticator проверка сессии и ротация GLOBAL токена (реализуется service.AuthService)
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (repository.User, error)
	EnsureGlobalToken(ctx context.Context, user repository.User, current string) (string, token.Claims, bool, error)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// WithSession читает cookie SESSION, проверяет сессию (продлевая TTL) и кладёт
// пользователя и session_id в context. GLOBAL токен перевыпускается, если его нет,
// он невалиден, выдан другому пользователю или скоро истекает.
func WithSession(auth Authenticator, cookies Cookies, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := platformobservability.L(ctx, logger)

			sid := cookieValue(r, cookies.SessionName)
			if sid == "" {
				writeError(w, http.StatusUnauthorized, "session is required")
				return
			}

			user, err := auth.Authenticate(ctx, sid)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					cookies.Clear(w)
					writeError(w, http.StatusUnauthorized, "session expired")
					return
				}
				log.Error("failed to authenticate session", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			raw, claims, rotated, err := auth.EnsureGlobalToken(ctx, user, cookieValue(r, cookies.GlobalName))
			switch {
			case err != nil:
				// без свежего токена запрос всё равно обслуживаем
				log.Warn("failed to rotate global token", zap.String("user_id", user.ID), zap.Error(err))
			case rotated:
				cookies.SetGlobal(w, raw, claims.ExpiresAt.Time)
			}

			ctx = authctx.WithSessionID(ctx, sid)
			ctx = authctx.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin пропускает только роль ADMIN; ставится после WithSession
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authctx.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "session is required")
			return
		}
		if user.Role != repository.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
