package authctx

import (
	"context"

	"github.com/shestoi/GoShop/internal/repository"
)

type ctxKeySessionID struct{}

type ctxKeyUser struct{}

// WithSessionID сохраняет session_id в контексте (кладёт HTTP middleware)
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID{}, sid)
}

// SessionIDFromContext возвращает session_id из контекста, если он был установлен
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKeySessionID{}).(string)
	return sid, ok
}

// WithUser сохраняет аутентифицированного пользователя
func WithUser(ctx context.Context, u repository.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFromContext возвращает пользователя; ok == false для анонимного запроса
func UserFromContext(ctx context.Context) (repository.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(repository.User)
	return u, ok
}
