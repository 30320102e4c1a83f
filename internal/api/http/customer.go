package httpapi

import (
	"net/http"

	"github.com/shestoi/GoShop/internal/service"
)

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

func (r customerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Phone: r.Phone, Email: r.Email, Note: r.Note}
}

type customerListResponse struct {
	Items []customerResponse `json:"items"`
	pageResponse
}

// CreateCustomer обрабатывает POST /customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	c, err := h.customers.CreateCustomer(r.Context(), actor(r), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

// UpdateCustomer обрабатывает PUT /customers/{id}
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	c, err := h.customers.UpdateCustomer(r.Context(), actor(r), id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// GetCustomer обрабатывает GET /customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.customers.GetCustomer(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// ListCustomers обрабатывает GET /customers?q=&page=&size=
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	search, page := q.str("q"), q.page()
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}
	out, err := h.customers.ListCustomers(r.Context(), actor(r), search, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerListResponse{
		Items:        mapSlice(out.Items, toCustomerResponse),
		pageResponse: newPageResponse(out.Page, out.Total, out.TotalPages),
	})
}
