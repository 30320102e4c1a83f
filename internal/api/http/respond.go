package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/authctx"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor сопоставляет доменную ошибку HTTP статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrOTPInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyExists), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrProductInactive),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrOTPTooManyAttempts), errors.Is(err, service.ErrOTPTooFrequent):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		resp = errorResponse{Error: vErr.Message, Field: vErr.Field}
	}
	if status == http.StatusInternalServerError {
		platformobservability.L(r.Context(), h.logger).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		resp = errorResponse{Error: "internal error"}
	}
	writeJSON(w, status, resp)
}

func (h *Handler) badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Field: field})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %v", err)
	}
	return nil
}

// actor пользователь из контекста (положен middleware.WithSession)
func actor(r *http.Request) service.Actor {
	u, ok := authctx.UserFromContext(r.Context())
	if !ok {
		return service.Actor{}
	}
	return service.Actor{UserID: u.ID, Role: u.Role}
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s: %w", name, repository.ErrNotFound)
	}
	return v, nil
}

// query разбирает параметры строки запроса, накапливая первую ошибку
type query struct {
	r     *http.Request
	field string
	err   error
}

func newQuery(r *http.Request) *query {
	return &query{r: r}
}

func (q *query) fail(field string, err error) {
	if q.err == nil {
		q.field, q.err = field, err
	}
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

func (q *query) int(name string) int {
	s := q.str(name)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		q.fail(name, errors.New("must be an integer"))
	}
	return v
}

func (q *query) int64Ptr(name string) *int64 {
	s := q.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		q.fail(name, errors.New("must be an integer"))
		return nil
	}
	return &v
}

func (q *query) boolPtr(name string) *bool {
	s := q.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(name, errors.New("must be a boolean"))
		return nil
	}
	return &v
}

// time принимает RFC3339 или дату YYYY-MM-DD (начало суток UTC)
func (q *query) time(name string) *time.Time {
	s := q.str(name)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		q.fail(name, errors.New("must be RFC3339 or YYYY-MM-DD"))
		return nil
	}
	return &t
}

func (q *query) page() service.Page {
	return service.Page{Number: q.int("page"), Size: q.int("size")}
}
