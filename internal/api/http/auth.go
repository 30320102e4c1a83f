package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/authctx"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
)

type otpRequest struct {
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type meResponse struct {
	User     userResponse `json:"user"`
	Orders   int64        `json:"open_orders"`
	LowStock int64        `json:"low_stock"`
}

// RequestOTP обрабатывает POST /auth/otp
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	if err := h.auth.RequestOTP(r.Context(), req.Phone); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyOTP обрабатывает POST /auth/verify: при успехе ставит SESSION и GLOBAL
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	out, err := h.auth.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.cookies.SetSession(w, out.SessionID)
	h.cookies.SetGlobal(w, out.GlobalToken, out.Claims.ExpiresAt.Time)
	writeJSON(w, http.StatusOK, meResponse{
		User:     toUserResponse(out.User),
		Orders:   out.Claims.Counts.Orders,
		LowStock: out.Claims.Counts.LowStock,
	})
}

// Logout обрабатывает POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := authctx.SessionIDFromContext(r.Context()); ok {
		if err := h.auth.Logout(r.Context(), sid); err != nil {
			// cookie всё равно удаляем, сессия истечёт по TTL
			platformobservability.L(r.Context(), h.logger).Warn("failed to delete session", zap.Error(err))
		}
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me обрабатывает GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session is required"})
		return
	}
	counts, err := h.auth.Counts(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(user), Orders: counts.Orders, LowStock: counts.LowStock})
}
