package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type settingRequest struct {
	Value string `json:"value"`
}

// ListSettings обрабатывает GET /settings
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	items, err := h.settings.List(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toSettingResponse))
}

// UpdateSetting обрабатывает PUT /settings/{key}
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	s, err := h.settings.Update(r.Context(), actor(r), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingResponse(s))
}

// ReloadSettings обрабатывает POST /settings/reload
func (h *Handler) ReloadSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.ReloadAll(r.Context(), actor(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
