package httpapi

import (
	"time"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
)

// Денежные суммы в ответах: строки с двумя знаками после точки

type pageResponse struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPageResponse(p service.Page, total, pages int64) pageResponse {
	return pageResponse{Page: p.Number, Size: p.Size, Total: total, TotalPages: pages}
}

type userResponse struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u repository.User) userResponse {
	return userResponse{ID: u.ID, Phone: u.Phone, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c repository.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

type productResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   *int64    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Color        string    `json:"color,omitempty"`
	Size         string    `json:"size,omitempty"`
	Price        string    `json:"price"`
	Stock        int64     `json:"stock"`
	ImageID      *string   `json:"image_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProductResponse(p repository.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Color:        p.Color,
		Size:         p.Size,
		Price:        p.Price.StringFixed(2),
		Stock:        p.Stock,
		ImageID:      p.ImageID,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type snapshotResponse struct {
	Name         string `json:"name"`
	Image        string `json:"image,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Color        string `json:"color,omitempty"`
	Size         string `json:"size,omitempty"`
}

func toSnapshotResponse(s repository.ProductSnapshot) snapshotResponse {
	return snapshotResponse{Name: s.Name, Image: s.Image, CategoryName: s.CategoryName, Color: s.Color, Size: s.Size}
}

type transactionResponse struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	Reason          string           `json:"reason"`
	ProductID       *int64           `json:"product_id"`
	Product         snapshotResponse `json:"product"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       string           `json:"unit_price"`
	DiscountPercent string           `json:"discount_percent"`
	TotalPrice      string           `json:"total_price"`
	StockAfter      int64            `json:"stock_after"`
	UserID          string           `json:"user_id"`
	CustomerID      *int64           `json:"customer_id"`
	OrderID         *int64           `json:"order_id"`
	Tags            []string         `json:"tags"`
	Note            string           `json:"note,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func toTransactionResponse(t repository.InventoryTransaction) transactionResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return transactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		Reason:          string(t.Reason),
		ProductID:       t.ProductID,
		Product:         toSnapshotResponse(t.Snapshot),
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice.StringFixed(2),
		DiscountPercent: t.DiscountPercent.String(),
		TotalPrice:      t.TotalPrice.StringFixed(2),
		StockAfter:      t.StockAfter,
		UserID:          t.UserID,
		CustomerID:      t.CustomerID,
		OrderID:         t.OrderID,
		Tags:            tags,
		Note:            t.Note,
		CreatedAt:       t.CreatedAt,
	}
}

type orderItemResponse struct {
	ID         int64            `json:"id"`
	ProductID  *int64           `json:"product_id"`
	Product    snapshotResponse `json:"product"`
	Quantity   int64            `json:"quantity"`
	UnitPrice  string           `json:"unit_price"`
	TotalPrice string           `json:"total_price"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	Number          string              `json:"number"`
	UserID          string              `json:"user_id"`
	CustomerID      *int64              `json:"customer_id"`
	Status          string              `json:"status"`
	DiscountPercent string              `json:"discount_percent"`
	Total           string              `json:"total"`
	Comment         string              `json:"comment,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderResponse(o repository.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Product:    toSnapshotResponse(it.Snapshot),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			TotalPrice: it.TotalPrice.StringFixed(2),
		})
	}
	return orderResponse{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		DiscountPercent: o.DiscountPercent.String(),
		Total:           o.Total.StringFixed(2),
		Comment:         o.Comment,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type customerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResponse(c repository.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email, Note: c.Note, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

type settingResponse struct {
	Key         string    `json:"key"`
	Type        string    `json:"type"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSettingResponse(s repository.Setting) settingResponse {
	return settingResponse{Key: s.Key, Type: string(s.Type), Value: s.Value, Description: s.Description, UpdatedAt: s.UpdatedAt}
}

type attachmentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAttachmentResponse(a repository.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          a.ID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		URL:         "/api/v1/attachments/" + a.ID,
		CreatedAt:   a.CreatedAt,
	}
}

type auditEntryResponse struct {
	ID       string         `json:"id"`
	ActorID  string         `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Payload  map[string]any `json:"payload,omitempty"`
	At       time.Time      `json:"at"`
}

func toAuditEntryResponse(e repository.AuditEntry) auditEntryResponse {
	return auditEntryResponse{ID: e.ID, ActorID: e.ActorID, Action: e.Action, Entity: e.Entity, EntityID: e.EntityID, Payload: e.Payload, At: e.At}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
