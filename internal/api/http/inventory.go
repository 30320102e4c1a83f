package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
)

type transactionRequest struct {
	ProductID       int64            `json:"product_id"`
	Type            string           `json:"type"`
	Reason          string           `json:"reason"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	CustomerID      *int64           `json:"customer_id"`
	Tags            []string         `json:"tags"`
	Note            string           `json:"note"`
}

type countsResponse struct {
	Total     int64            `json:"total"`
	In        int64            `json:"in"`
	Out       int64            `json:"out"`
	Returning int64            `json:"returning"`
	Tags      map[string]int64 `json:"tags"`
}

type transactionListResponse struct {
	Items  []transactionResponse `json:"items"`
	Counts countsResponse        `json:"counts"`
	pageResponse
}

type productQuantityResponse struct {
	ProductID *int64 `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

type statisticsResponse struct {
	From          time.Time                 `json:"from"`
	To            time.Time                 `json:"to"`
	QuantityIn    int64                     `json:"quantity_in"`
	QuantityOut   int64                     `json:"quantity_out"`
	AmountIn      string                    `json:"amount_in"`
	AmountOut     string                    `json:"amount_out"`
	ByReason      map[string]int64          `json:"by_reason"`
	TopProducts   []productQuantityResponse `json:"top_products"`
	LowStockCount int64                     `json:"low_stock_count"`
	Threshold     int64                     `json:"low_stock_threshold"`
}

// CreateTransaction обрабатывает POST /transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "", err.Error())
		return
	}
	tx, err := h.inventory.CreateTransaction(r.Context(), service.CreateTransactionInput{
		Actor:           actor(r),
		ProductID:       req.ProductID,
		Type:            repository.TransactionType(req.Type),
		Reason:          repository.Reason(req.Reason),
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
		CustomerID:      req.CustomerID,
		Tags:            req.Tags,
		Note:            req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// GetTransaction обрабатывает GET /transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.inventory.GetTransaction(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// ListTransactions обрабатывает GET /transactions с фильтрами
// type, reason, product_id, customer_id, order_id, tag, from, to, page, size
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	input := service.ListTransactionsInput{
		Actor:      actor(r),
		ProductID:  q.int64Ptr("product_id"),
		CustomerID: q.int64Ptr("customer_id"),
		OrderID:    q.int64Ptr("order_id"),
		Tag:        q.str("tag"),
		From:       q.time("from"),
		To:         q.time("to"),
		Page:       q.page(),
	}
	if v := q.str("type"); v != "" {
		t := repository.TransactionType(v)
		input.Type = &t
	}
	if v := q.str("reason"); v != "" {
		reason := repository.Reason(v)
		input.Reason = &reason
	}
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}

	out, err := h.inventory.ListTransactions(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tags := out.Counts.Tags
	if tags == nil {
		tags = map[string]int64{}
	}
	writeJSON(w, http.StatusOK, transactionListResponse{
		Items: mapSlice(out.Items, toTransactionResponse),
		Counts: countsResponse{
			Total:     out.Counts.Total,
			In:        out.Counts.In,
			Out:       out.Counts.Out,
			Returning: out.Counts.Returning,
			Tags:      tags,
		},
		pageResponse: newPageResponse(out.Page, out.Counts.Total, out.TotalPages),
	})
}

// Statistics обрабатывает GET /statistics?from=&to=; без параметров: текущие сутки
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	var from, to time.Time
	if v := q.time("from"); v != nil {
		from = *v
	}
	if v := q.time("to"); v != nil {
		to = *v
	}
	if q.err != nil {
		h.badRequest(w, q.field, q.err.Error())
		return
	}

	out, err := h.inventory.GetStatistics(r.Context(), actor(r), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsResponse(out))
}

func toStatisticsResponse(out *service.StatisticsOutput) statisticsResponse {
	byReason := make(map[string]int64, len(out.Statistics.ByReason))
	for reason, n := range out.Statistics.ByReason {
		byReason[string(reason)] = n
	}
	return statisticsResponse{
		From:        out.From,
		To:          out.To,
		QuantityIn:  out.Statistics.QuantityIn,
		QuantityOut: out.Statistics.QuantityOut,
		AmountIn:    out.Statistics.AmountIn.StringFixed(2),
		AmountOut:   out.Statistics.AmountOut.StringFixed(2),
		ByReason:    byReason,
		TopProducts: mapSlice(out.Statistics.TopProducts, func(p repository.ProductQuantity) productQuantityResponse {
			return productQuantityResponse{ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity}
		}),
		LowStockCount: out.LowStockCount,
		Threshold:     out.Threshold,
	}
}
