package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPMiddleware_PutsLoggerIntoContext(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	var got *zap.Logger
	router := chi.NewRouter()
	router.Use(HTTPMiddleware("shop", zap.NewNop()))
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		got = LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, got)
}

func TestL_FallsBackToBase(t *testing.T) {
	base := zap.NewNop()
	require.Same(t, base, L(context.Background(), base))
}
