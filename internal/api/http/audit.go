package httpapi

import "net/http"

type auditListResponse struct {
	Items []auditEntryResponse `json:"items"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// ListAudit обрабатывает GET /audit?entity=&entity_id=&page=&size=
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	entity, entityID, page := q.str("entity"), q.str("entity_id"), q.page()
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}
	items, p, err := h.audit.List(r.Context(), actor(r), entity, entityID, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditListResponse{
		Items: mapSlice(items, toAuditEntryResponse),
		Page:  p.Number,
		Size:  p.Size,
	})
}
