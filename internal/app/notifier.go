package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/config"
	"github.com/shestoi/GoShop/internal/event"
	eventkafka "github.com/shestoi/GoShop/internal/event/kafka"
	"github.com/shestoi/GoShop/internal/notification"
	"github.com/shestoi/GoShop/internal/repository/postgres"
	redisrepo "github.com/shestoi/GoShop/internal/repository/redis"
	"github.com/shestoi/GoShop/internal/service"
	"github.com/shestoi/GoShop/internal/telegram"
	"github.com/shestoi/GoShop/internal/templates"
	platformhealth "github.com/shestoi/GoShop/platform/health/http"
	platformlogging "github.com/shestoi/GoShop/platform/logging"
	platformobservability "github.com/shestoi/GoShop/platform/observability"
	platformshutdown "github.com/shestoi/GoShop/platform/shutdown"
)

// Notifier содержит все зависимости для запуска и корректного shutdown notifier:
// consumer событий shop и Telegram бот админ-чата
type Notifier struct {
	logger          *zap.Logger
	healthServer    *http.Server
	consumer        *eventkafka.Consumer
	bot             *notification.Bot
	settings        *service.SettingsService
	settingsRefresh time.Duration
	shutdownMgr     *platformshutdown.Manager

	workersCtx    context.Context
	cancelWorkers context.CancelFunc
	workers       sync.WaitGroup
	wg            sync.WaitGroup
}

// BuildNotifier создаёт и настраивает все зависимости notifier
func BuildNotifier(cfg config.Config) (_ *Notifier, err error) {
	const op = "app.BuildNotifier"

	logger, err := newLogger(cfg, "notifier")
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("op", op))

	topics := []string{
		cfg.Kafka.Topic(event.TypeOrderCreated),
		cfg.Kafka.Topic(event.TypeOrderStatusChanged),
		cfg.Kafka.Topic(event.TypeTransactionCreated),
	}
	logger.Info("Building notifier",
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.Strings("topics", topics),
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.String("dlq_topic", cfg.Kafka.DLQTopic()),
		zap.Int("retry_max_attempts", cfg.Consumer.MaxAttempts),
		zap.Duration("retry_backoff_base", cfg.Consumer.BackoffBase),
	)

	ctx := context.Background()
	a := &Notifier{
		logger:          logger,
		settingsRefresh: cfg.SettingsRefresh,
		shutdownMgr:     platformshutdown.New(cfg.ShutdownTimeout, logger),
	}
	defer func() {
		if err != nil {
			a.shutdownMgr.Shutdown()
		}
	}()

	otelCfg := cfg.OTel
	otelCfg.ServiceName = "notifier"
	otelShutdown, err := platformobservability.Init(ctx, otelCfg)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("otel", otelShutdown)

	// Миграции накатывает shop, notifier только подключается
	pool, err := connectPostgres(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))

	redisClient, err := connectRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownMgr.Add("redis_client", platformshutdown.Closer(redisClient))

	renderer, err := templates.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	var sender telegram.Sender
	var client *telegram.Client
	if cfg.Telegram.BotToken != "" {
		client = telegram.NewClient(logger, cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.PollTimeout)
		sender = client
		logger.Info("Telegram sender enabled", zap.String("chat_id", cfg.Telegram.AdminChatID))
	} else {
		sender = telegram.NewNoOpSender(logger)
		logger.Warn("Telegram disabled, using no-op sender")
	}

	// Уведомления о событиях
	notificationSvc := notification.NewService(
		logger,
		postgres.NewInboxRepository(pool),
		sender,
		renderer,
		cfg.Telegram.AdminChatID,
	)

	dlqPublisher := eventkafka.NewDLQPublisher(logger, eventkafka.NewWriter(cfg.Kafka.Brokers), cfg.Kafka.DLQTopic())
	a.shutdownMgr.Add("dlq_writer", platformshutdown.Closer(dlqPublisher))

	a.consumer = eventkafka.NewConsumer(
		logger,
		eventkafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics),
		notificationSvc,
		dlqPublisher,
		cfg.Consumer.MaxAttempts,
		cfg.Consumer.BackoffBase,
	)
	a.shutdownMgr.Add("kafka_reader", platformshutdown.Closer(a.consumer))

	// Настройки нужны боту для порога низкого остатка
	settingsRepo := postgres.NewSettingRepository(pool)
	a.settings = service.NewSettingsService(logger, settingsRepo, redisrepo.NewSettingsBroadcaster(redisClient, logger), nil)
	if err := a.settings.Reload(ctx); err != nil {
		return nil, err
	}

	if client != nil {
		// Бот только читает данные, auditor не нужен
		catalogRepo := postgres.NewCatalogRepository(pool)
		inventorySvc := service.NewInventoryService(logger, postgres.NewInventoryRepository(pool), catalogRepo, a.settings, cfg.Kafka, nil)
		catalogSvc := service.NewCatalogService(logger, catalogRepo, inventorySvc, a.settings, nil)
		orderSvc := service.NewOrderService(logger, postgres.NewOrderRepository(pool), postgres.NewCustomerRepository(pool), a.settings, cfg.Kafka, nil)

		a.bot = notification.NewBot(
			logger,
			client,
			sender,
			renderer,
			inventorySvc,
			catalogSvc,
			orderSvc,
			a.settings,
			cfg.Telegram.AdminChatID,
			cfg.Telegram.PollTimeout,
		)
	} else {
		logger.Warn("Telegram bot disabled, admin commands unavailable")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", platformhealth.Handler(map[string]platformhealth.Check{
		"postgres": postgresCheck(pool),
		"redis":    redisCheck(redisClient),
	}))
	a.healthServer = &http.Server{
		Addr:              cfg.NotifierAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Consumer и бот останавливаются раньше reader/writer и пулов
	a.workersCtx, a.cancelWorkers = context.WithCancel(context.Background())
	a.shutdownMgr.Add("background_workers", platformshutdown.Cancel(a.cancelWorkers, a.workers.Wait))
	a.shutdownMgr.Add("health_server", platformshutdown.ShutdownHTTPServer(a.healthServer))

	return a, nil
}

// Run запускает consumer и бот и блокируется до получения сигнала shutdown
func (a *Notifier) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting notifier", zap.String("health_addr", a.healthServer.Addr))

	a.workers.Add(2)
	go func() {
		defer a.workers.Done()
		a.settings.Run(a.workersCtx, a.settingsRefresh)
	}()
	go func() {
		defer a.workers.Done()
		if err := a.consumer.Start(a.workersCtx); err != nil {
			a.logger.Error("kafka consumer stopped", zap.Error(err))
		}
	}()

	if a.bot != nil {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			if err := a.bot.Run(a.workersCtx); err != nil {
				a.logger.Error("telegram bot stopped", zap.Error(err))
			}
		}()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("health server error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Notifier stopped")
	return nil
}
