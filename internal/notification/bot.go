package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/service"
	"github.com/shestoi/GoShop/internal/telegram"
	"github.com/shestoi/GoShop/internal/templates"
)

// размер списка /lowstock
const lowStockListSize = 20

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=StatsSource --dir=. --output=./mocks --outpkg=mocks

// StatsSource статистика склада (service.InventoryService)
type StatsSource interface {
	Statistics(ctx context.Context, from, to time.Time) (*service.StatisticsOutput, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProductSource --dir=. --output=./mocks --outpkg=mocks

// ProductSource каталог (service.CatalogService)
type ProductSource interface {
	ListProducts(ctx context.Context, input service.ListProductsInput) (*service.ListProductsOutput, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderSource --dir=. --output=./mocks --outpkg=mocks

// OrderSource поиск заказа по номеру (service.OrderService)
type OrderSource interface {
	FindByNumber(ctx context.Context, number string) (repository.Order, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=UpdateSource --dir=. --output=./mocks --outpkg=mocks

// UpdateSource long polling входящих сообщений (telegram.Client)
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

type lowStockView struct {
	Items     []repository.Product
	Total     int64
	Threshold int64
}

// Bot отвечает на команды из админ-чата; сообщения из других чатов игнорируются
type Bot struct {
	logger      *zap.Logger
	updates     UpdateSource
	sender      telegram.Sender
	renderer    *templates.Renderer
	stats       StatsSource
	products    ProductSource
	orders      OrderSource
	settings    service.Settings
	chatID      string
	pollTimeout time.Duration
}

// NewBot создаёт бота админ-чата
func NewBot(
	logger *zap.Logger,
	updates UpdateSource,
	sender telegram.Sender,
	renderer *templates.Renderer,
	stats StatsSource,
	products ProductSource,
	orders OrderSource,
	settings service.Settings,
	chatID string,
	pollTimeout time.Duration,
) *Bot {
	return &Bot{
		logger:      logger,
		updates:     updates,
		sender:      sender,
		renderer:    renderer,
		stats:       stats,
		products:    products,
		orders:      orders,
		settings:    settings,
		chatID:      chatID,
		pollTimeout: pollTimeout,
	}
}

// Run опрашивает getUpdates до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("starting telegram bot", zap.Duration("poll_timeout", b.pollTimeout))

	var offset int64
	for {
		updates, err := b.updates.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("telegram bot context cancelled, stopping")
				return nil
			}
			b.logger.Warn("failed to get updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil || !strings.HasPrefix(u.Message.Text, "/") {
		return
	}
	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	if chatID != b.chatID {
		b.logger.Warn("command from foreign chat ignored", zap.String("chat_id", chatID))
		return
	}

	reply, err := b.HandleCommand(ctx, u.Message.Text)
	if err != nil {
		b.logger.Error("failed to handle bot command", zap.String("command", u.Message.Text), zap.Error(err))
		reply = "Не удалось выполнить команду, попробуйте позже"
	}
	if err := b.sender.Send(ctx, b.chatID, reply); err != nil {
		b.logger.Error("failed to send bot reply", zap.Error(err))
	}
}

// HandleCommand возвращает ответ на команду. Команды вида /stats@BotName тоже принимаются.
func (b *Bot) HandleCommand(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return b.renderer.Render(templates.Help, nil)
	}
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/stats":
		out, err := b.stats.Statistics(ctx, time.Time{}, time.Time{})
		if err != nil {
			return "", fmt.Errorf("statistics: %w", err)
		}
		return b.renderer.Render(templates.Stats, out)

	case "/lowstock":
		threshold := b.settings.Int(service.SettingLowStockThreshold, service.DefaultLowStockThreshold)
		out, err := b.products.ListProducts(ctx, service.ListProductsInput{
			LowStockOnly: true,
			Page:         service.Page{Number: 1, Size: lowStockListSize},
		})
		if err != nil {
			return "", fmt.Errorf("list low stock: %w", err)
		}
		return b.renderer.Render(templates.LowStockList, lowStockView{Items: out.Items, Total: out.Total, Threshold: threshold})

	case "/order":
		if len(args) == 0 {
			return "Использование: /order <номер>", nil
		}
		o, err := b.orders.FindByNumber(ctx, args[0])
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Sprintf("Заказ %s не найден", args[0]), nil
		}
		if err != nil {
			return "", fmt.Errorf("find order: %w", err)
		}
		return b.renderer.Render(templates.OrderDetails, o)

	default:
		return b.renderer.Render(templates.Help, nil)
	}
}
