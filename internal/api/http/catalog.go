package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shestoi/GoShop/internal/service"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type productRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   *int64          `json:"category_id"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	Price        decimal.Decimal `json:"price"`
	ImageID      *string         `json:"image_id"`
	Active       *bool           `json:"active"`
	InitialStock int64           `json:"initial_stock"`
}

// productPatch частичное обновление; clear_* сбрасывают связь в null
type productPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	CategoryID    *int64           `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Color         *string          `json:"color"`
	Size          *string          `json:"size"`
	Price         *decimal.Decimal `json:"price"`
	ImageID       *string          `json:"image_id"`
	ClearImage    bool             `json:"clear_image"`
	Active        *bool            `json:"active"`
}

type productListResponse struct {
	Items []productResponse `json:"items"`
	pageResponse
}

// ListCategories обрабатывает GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toCategoryResponse))
}

// CreateCategory обрабатывает POST /categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), actor(r), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// UpdateCategory обрабатывает PUT /categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), actor(r), id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

// DeleteCategory обрабатывает DELETE /categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), actor(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProducts обрабатывает GET /products?category_id=&active=&q=&low_stock=&page=&size=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	input := service.ListProductsInput{
		CategoryID: q.int64Ptr("category_id"),
		Active:     q.boolPtr("active"),
		Search:     q.str("q"),
		Page:       q.page(),
	}
	if low := q.boolPtr("low_stock"); low != nil {
		input.LowStockOnly = *low
	}
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}

	out, err := h.catalog.ListProducts(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productListResponse{
		Items:        mapSlice(out.Items, toProductResponse),
		pageResponse: newPageResponse(out.Page, out.Total, out.TotalPages),
	})
}

// GetProduct обрабатывает GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// CreateProduct обрабатывает POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		Actor:        actor(r),
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Color:        req.Color,
		Size:         req.Size,
		Price:        req.Price,
		ImageID:      req.ImageID,
		Active:       req.Active,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// UpdateProduct обрабатывает PATCH /products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req productPatch
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), service.UpdateProductInput{
		Actor:         actor(r),
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Color:         req.Color,
		Size:          req.Size,
		Price:         req.Price,
		ImageID:       req.ImageID,
		ClearImage:    req.ClearImage,
		Active:        req.Active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProduct обрабатывает DELETE /products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), actor(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
