package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/api/http/middleware"
	platformhealth "github.com/shestoi/GoShop/platform/health/http"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
)

// RouterConfig зависимости роутера, не относящиеся к Handler
type RouterConfig struct {
	Auth        middleware.Authenticator
	CORSOrigins []string
	// Checks проверки готовности для /health (postgres, redis, mongo)
	Checks map[string]platformhealth.Check
}

// NewRouter создаёт роутер shop API.
// Публичные: /health, /api/v1/auth/otp|verify, GET каталога и вложений.
// Остальное требует SESSION; администрирование дополнительно роль ADMIN.
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("shop", logger))
	}
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health без middleware сессии
	router.Get("/health", platformhealth.Handler(cfg.Checks))

	withSession := middleware.WithSession(cfg.Auth, h.cookies, h.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp", h.RequestOTP)
			r.Post("/verify", h.VerifyOTP)
			r.With(withSession).Post("/logout", h.Logout)
			r.With(withSession).Get("/me", h.Me)
		})

		// каталог читают все
		r.Get("/categories", h.ListCategories)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/attachments/{id}", h.GetAttachment)

		r.Group(func(r chi.Router) {
			r.Use(withSession)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.CreateOrder)
				r.Get("/", h.ListOrders)
				r.Get("/{id}", h.GetOrder)
				r.Get("/number/{number}", h.GetOrderByNumber)
				r.Post("/{id}/status", h.ChangeOrderStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/categories", h.CreateCategory)
				r.Put("/categories/{id}", h.UpdateCategory)
				r.Delete("/categories/{id}", h.DeleteCategory)

				r.Post("/products", h.CreateProduct)
				r.Patch("/products/{id}", h.UpdateProduct)
				r.Delete("/products/{id}", h.DeleteProduct)

				r.Post("/transactions", h.CreateTransaction)
				r.Get("/transactions", h.ListTransactions)
				r.Get("/transactions/{id}", h.GetTransaction)
				r.Get("/statistics", h.Statistics)

				r.Post("/customers", h.CreateCustomer)
				r.Get("/customers", h.ListCustomers)
				r.Get("/customers/{id}", h.GetCustomer)
				r.Put("/customers/{id}", h.UpdateCustomer)

				r.Get("/settings", h.ListSettings)
				r.Put("/settings/{key}", h.UpdateSetting)
				r.Post("/settings/reload", h.ReloadSettings)

				r.Post("/attachments", h.UploadAttachment)
				r.Delete("/attachments/{id}", h.DeleteAttachment)

				r.Get("/audit", h.ListAudit)
			})
		})
	})

	return router
}
