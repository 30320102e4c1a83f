package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/api/http/middleware/mocks"
	"github.com/shestoi/GoShop/internal/authctx"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
	"github.com/shestoi/GoShop/internal/token"
)

var testCookies = Cookies{SessionName: "SESSION", GlobalName: "GLOBAL", SessionTTL: time.Hour}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newRequest(session, global string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "SESSION", Value: session})
	}
	if global != "" {
		req.AddCookie(&http.Cookie{Name: "GLOBAL", Value: global})
	}
	return req
}

func TestWithSession(t *testing.T) {
	user := repository.User{ID: "u-1", Role: repository.RoleUser}
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name         string
		session      string
		global       string
		setup        func(a *mocks.Authenticator)
		expectedCode int
		expectNext   bool
		validate     func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:         "no session cookie",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:    "expired session clears cookies",
			session: "s-1",
			setup: func(a *mocks.Authenticator) {
				a.On("Authenticate", mock.Anything, "s-1").Return(repository.User{}, service.ErrUnauthorized).Once()
			},
			expectedCode: http.StatusUnauthorized,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				c := findCookie(rec, "SESSION")
				require.NotNil(t, c)
				require.Equal(t, -1, c.MaxAge)
			},
		},
		{
			name:    "store failure",
			session: "s-1",
			setup: func(a *mocks.Authenticator) {
				a.On("Authenticate", mock.Anything, "s-1").Return(repository.User{}, errors.New("redis down")).Once()
			},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:    "valid session keeps token",
			session: "s-1",
			global:  "jwt-old",
			setup: func(a *mocks.Authenticator) {
				a.On("Authenticate", mock.Anything, "s-1").Return(user, nil).Once()
				a.On("EnsureGlobalToken", mock.Anything, user, "jwt-old").Return("jwt-old", token.Claims{}, false, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectNext:   true,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				require.Nil(t, findCookie(rec, "GLOBAL"))
			},
		},
		{
			name:    "valid session rotates token",
			session: "s-1",
			setup: func(a *mocks.Authenticator) {
				a.On("Authenticate", mock.Anything, "s-1").Return(user, nil).Once()
				a.On("EnsureGlobalToken", mock.Anything, user, "").Return("jwt-new", token.Claims{
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
				}, true, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectNext:   true,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				c := findCookie(rec, "GLOBAL")
				require.NotNil(t, c)
				require.Equal(t, "jwt-new", c.Value)
				require.False(t, c.HttpOnly)
			},
		},
		{
			name:    "rotation failure does not block request",
			session: "s-1",
			setup: func(a *mocks.Authenticator) {
				a.On("Authenticate", mock.Anything, "s-1").Return(user, nil).Once()
				a.On("EnsureGlobalToken", mock.Anything, user, "").Return("", token.Claims{}, false, errors.New("db down")).Once()
			},
			expectedCode: http.StatusOK,
			expectNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := mocks.NewAuthenticator(t)
			if tt.setup != nil {
				tt.setup(auth)
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				u, ok := authctx.UserFromContext(r.Context())
				require.True(t, ok)
				require.Equal(t, "u-1", u.ID)
				sid, _ := authctx.SessionIDFromContext(r.Context())
				require.Equal(t, "s-1", sid)
			})

			rec := httptest.NewRecorder()
			WithSession(auth, testCookies, zap.NewNop())(next).ServeHTTP(rec, newRequest(tt.session, tt.global))

			require.Equal(t, tt.expectedCode, rec.Code)
			require.Equal(t, tt.expectNext, called)
			if tt.validate != nil {
				tt.validate(t, rec)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(authctx.WithUser(req.Context(), repository.User{ID: "u-1", Role: repository.RoleUser}))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(authctx.WithUser(req.Context(), repository.User{ID: "u-2", Role: repository.RoleAdmin}))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCookies_SetSession(t *testing.T) {
	rec := httptest.NewRecorder()
	testCookies.SetSession(rec, "s-1")
	c := findCookie(rec, "SESSION")
	require.NotNil(t, c)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)
}
