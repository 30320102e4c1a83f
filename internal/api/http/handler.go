package httpapi

import (
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/api/http/middleware"
	"github.com/shestoi/GoShop/internal/service"
)

// Handler HTTP обработчики shop API.
// Бизнес-логика и проверки прав живут в service, здесь только разбор запроса и ответ.
type Handler struct {
	logger      *zap.Logger
	cookies     middleware.Cookies
	auth        *service.AuthService
	catalog     *service.CatalogService
	inventory   *service.InventoryService
	orders      *service.OrderService
	customers   *service.CustomerService
	settings    *service.SettingsService
	attachments *service.AttachmentService
	audit       *service.AuditService
	maxUpload   int64
}

// Services набор сервисов для NewHandler
type Services struct {
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Inventory   *service.InventoryService
	Orders      *service.OrderService
	Customers   *service.CustomerService
	Settings    *service.SettingsService
	Attachments *service.AttachmentService
	Audit       *service.AuditService
}

// NewHandler создаёт Handler; maxUpload ограничивает размер multipart запроса
func NewHandler(logger *zap.Logger, cookies middleware.Cookies, svc Services, maxUpload int64) *Handler {
	return &Handler{
		logger:      logger,
		cookies:     cookies,
		auth:        svc.Auth,
		catalog:     svc.Catalog,
		inventory:   svc.Inventory,
		orders:      svc.Orders,
		customers:   svc.Customers,
		settings:    svc.Settings,
		attachments: svc.Attachments,
		audit:       svc.Audit,
		maxUpload:   maxUpload,
	}
}
