// Package app собирает зависимости shop и notifier и управляет их жизненным циклом.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/shestoi/GoShop/internal/api/http"
	"github.com/shestoi/GoShop/internal/api/http/middleware"
	"github.com/shestoi/GoShop/internal/config"
	eventkafka "github.com/shestoi/GoShop/internal/event/kafka"
	mongorepo "github.com/shestoi/GoShop/internal/repository/mongo"
	"github.com/shestoi/GoShop/internal/repository/postgres"
	redisrepo "github.com/shestoi/GoShop/internal/repository/redis"
	"github.com/shestoi/GoShop/internal/service"
	"github.com/shestoi/GoShop/internal/sms"
	"github.com/shestoi/GoShop/internal/storage"
	"github.com/shestoi/GoShop/internal/token"
	platformhealth "github.com/shestoi/GoShop/platform/health/http"
	platformlogging "github.com/shestoi/GoShop/platform/logging"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
	platformshutdown "github.com/shestoi/GoShop/platform/shutdown"
)

// Shop содержит все зависимости для запуска и корректного shutdown shop API
type Shop struct {
	logger          *zap.Logger
	httpServer      *http.Server
	settings        *service.SettingsService
	settingsRefresh time.Duration
	dispatcher      *eventkafka.OutboxDispatcher
	shutdownMgr     *platformshutdown.Manager

	workersCtx    context.Context
	cancelWorkers context.CancelFunc
	workers       sync.WaitGroup
	wg            sync.WaitGroup
}

// BuildShop создаёт и настраивает все зависимости shop API.
// При ошибке уже открытые подключения закрываются.
func BuildShop(cfg config.Config) (_ *Shop, err error) {
	const op = "app.BuildShop"

	logger, err := newLogger(cfg, "shop")
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("op", op))
	cfg.Log(logger)

	ctx := context.Background()
	a := &Shop{
		logger:          logger,
		settingsRefresh: cfg.SettingsRefresh,
		shutdownMgr:     platformshutdown.New(cfg.ShutdownTimeout, logger),
	}
	defer func() {
		if err != nil {
			a.shutdownMgr.Shutdown()
		}
	}()

	// OpenTelemetry
	otelCfg := cfg.OTel
	otelCfg.ServiceName = "shop"
	otelShutdown, err := platformobservability.Init(ctx, otelCfg)
	if err != nil {
		return nil, err
	}
	// Регистрируем shutdown функции в обратном порядке выполнения
	a.shutdownMgr.Add("otel", otelShutdown)

	pool, err := connectPostgres(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))

	if err := migrate(cfg.PostgresDSN, cfg.MigrationsDir, logger); err != nil {
		return nil, err
	}

	redisClient, err := connectRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("redis_client", platformshutdown.Closer(redisClient))

	mongoClient, err := connectMongo(ctx, cfg.MongoURI, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("mongo_client", platformshutdown.DisconnectMongo(mongoClient))

	objects, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("attachment_storage", platformshutdown.Closer(objects))

	var smsSender service.SMSSender
	if cfg.SMS.GatewayURL != "" {
		smsSender = sms.NewGatewaySender(cfg.SMS)
		logger.Info("SMS gateway enabled", zap.String("sender", cfg.SMS.Sender))
	} else {
		smsSender = sms.NewLogSender(logger)
		logger.Warn("SMS gateway not configured, OTP codes will be logged")
	}

	// Репозитории
	userRepo := postgres.NewUserRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	sessionRepo := redisrepo.NewSessionRepository(redisClient, logger)
	otpRepo := redisrepo.NewOTPRepository(redisClient)
	broadcaster := redisrepo.NewSettingsBroadcaster(redisClient, logger)
	auditRepo := mongorepo.NewAuditRepository(mongoClient, cfg.MongoDatabase)

	// Сервисный слой
	auditSvc := service.NewAuditService(logger, auditRepo)
	settingsSvc := service.NewSettingsService(logger, settingRepo, broadcaster, auditSvc)
	if err := settingsSvc.Reload(ctx); err != nil {
		return nil, err
	}
	inventorySvc := service.NewInventoryService(logger, inventoryRepo, catalogRepo, settingsSvc, cfg.Kafka, auditSvc)
	catalogSvc := service.NewCatalogService(logger, catalogRepo, inventorySvc, settingsSvc, auditSvc)
	orderSvc := service.NewOrderService(logger, orderRepo, customerRepo, settingsSvc, cfg.Kafka, auditSvc)
	customerSvc := service.NewCustomerService(logger, customerRepo, auditSvc)
	attachmentSvc := service.NewAttachmentService(logger, attachmentRepo, objects, auditSvc, cfg.Storage.MaxUploadSize)
	authSvc := service.NewAuthService(
		logger,
		userRepo,
		sessionRepo,
		otpRepo,
		orderRepo,
		catalogRepo,
		smsSender,
		token.NewManager(cfg.Auth.GlobalTokenSecret, cfg.Auth.GlobalTokenTTL),
		settingsSvc,
		service.AuthOptions{
			SessionTTL:        cfg.Auth.SessionTTL,
			OTPTTL:            cfg.Auth.OTPTTL,
			OTPMaxAttempts:    cfg.Auth.OTPMaxAttempts,
			OTPResendInterval: cfg.Auth.OTPResendInterval,
			RotateBefore:      cfg.Auth.RotateBefore,
			AdminPhones:       cfg.Auth.AdminPhones,
		},
	)
	a.settings = settingsSvc

	// HTTP API
	cookies := middleware.Cookies{
		SessionName: cfg.Auth.SessionCookie,
		GlobalName:  cfg.Auth.GlobalCookie,
		Secure:      cfg.Auth.CookieSecure,
		Domain:      cfg.Auth.CookieDomain,
		SessionTTL:  cfg.Auth.SessionTTL,
	}
	handler := httpapi.NewHandler(logger, cookies, httpapi.Services{
		Auth:        authSvc,
		Catalog:     catalogSvc,
		Inventory:   inventorySvc,
		Orders:      orderSvc,
		Customers:   customerSvc,
		Settings:    settingsSvc,
		Attachments: attachmentSvc,
		Audit:       auditSvc,
	}, cfg.Storage.MaxUploadSize)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Auth:        authSvc,
		CORSOrigins: cfg.CORSOrigins,
		Checks: map[string]platformhealth.Check{
			"postgres": postgresCheck(pool),
			"redis":    redisCheck(redisClient),
			"mongo":    mongoCheck(mongoClient),
		},
	}, logger)
	a.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Shop HTTP server configured", zap.String("addr", cfg.HTTPAddr))

	// Outbox -> Kafka
	a.dispatcher = eventkafka.NewOutboxDispatcher(
		logger,
		outboxRepo,
		eventkafka.NewWriter(cfg.Kafka.Brokers),
		cfg.Outbox.BatchSize,
		cfg.Outbox.Interval,
		cfg.Outbox.MaxRetries,
		cfg.Outbox.Backoff,
	)
	a.shutdownMgr.Add("outbox_writer", platformshutdown.Closer(a.dispatcher))

	// Фоновые горутины останавливаются до закрытия writer и пулов
	a.workersCtx, a.cancelWorkers = context.WithCancel(context.Background())
	a.shutdownMgr.Add("background_workers", platformshutdown.Cancel(a.cancelWorkers, a.workers.Wait))
	a.shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))

	return a, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *Shop) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting shop service", zap.String("addr", a.httpServer.Addr))

	a.workers.Add(2)
	go func() {
		defer a.workers.Done()
		a.settings.Run(a.workersCtx, a.settingsRefresh)
	}()
	go func() {
		defer a.workers.Done()
		if err := a.dispatcher.Start(a.workersCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("outbox dispatcher stopped", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Shop service stopped")
	return nil
}
