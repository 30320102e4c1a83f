package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
)

type orderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type orderRequest struct {
	CustomerID      *int64             `json:"customer_id"`
	Items           []orderItemRequest `json:"items"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	Comment         string             `json:"comment"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type orderListResponse struct {
	Items []orderResponse `json:"items"`
	pageResponse
}

// CreateOrder обрабатывает POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.orders.CreateOrder(r.Context(), service.CreateOrderInput{
		Actor:           actor(r),
		CustomerID:      req.CustomerID,
		Items:           items,
		DiscountPercent: req.DiscountPercent,
		Comment:         req.Comment,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder обрабатывает GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.orders.GetOrder(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// GetOrderByNumber обрабатывает GET /orders/number/{number}
func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrderByNumber(r.Context(), actor(r), chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders обрабатывает GET /orders?status=&customer_id=&from=&to=&page=&size=.
// Обычный пользователь видит только свои заказы.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	input := service.ListOrdersInput{
		Actor:      actor(r),
		CustomerID: q.int64Ptr("customer_id"),
		From:       q.time("from"),
		To:         q.time("to"),
		Page:       q.page(),
	}
	if v := q.str("status"); v != "" {
		st := repository.OrderStatus(v)
		input.Status = &st
	}
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}

	out, err := h.orders.ListOrders(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{
		Items:        mapSlice(out.Items, toOrderResponse),
		pageResponse: newPageResponse(out.Page, out.Total, out.TotalPages),
	})
}

// ChangeOrderStatus обрабатывает POST /orders/{id}/status
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	o, err := h.orders.ChangeStatus(r.Context(), service.ChangeStatusInput{
		Actor:   actor(r),
		OrderID: id,
		Status:  repository.OrderStatus(req.Status),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
