package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/platform/observability"
)

// Ключи настроек склада
const (
	SettingMaxDiscountPercent = "inventory.max_discount_percent"
	SettingAllowNegativeStock = "inventory.allow_negative_stock"
	SettingLowStockThreshold  = "inventory.low_stock_threshold"
)

// DefaultLowStockThreshold порог низкого остатка, если настройка не задана
const DefaultLowStockThreshold = 5

const (
	maxTags          = 20
	maxTagLength     = 50
	maxNoteLength    = 1000
	topProductsLimit = 5
)

var defaultMaxDiscount = decimal.NewFromInt(100)

var reasonsByType = map[repository.TransactionType]map[repository.Reason]bool{
	repository.TransactionIn: {
		repository.ReasonPurchase:     true,
		repository.ReasonReturn:       true,
		repository.ReasonAdjustment:   true,
		repository.ReasonCancellation: true,
	},
	repository.TransactionOut: {
		repository.ReasonSale:       true,
		repository.ReasonWriteOff:   true,
		repository.ReasonDefect:     true,
		repository.ReasonAdjustment: true,
	},
}

// ValidReason проверяет, что причина допустима для направления
func ValidReason(t repository.TransactionType, r repository.Reason) bool {
	return reasonsByType[t][r]
}

// InventoryService учёт складских движений
type InventoryService struct {
	logger   *zap.Logger
	repo     repository.InventoryRepository
	catalog  repository.CatalogRepository
	settings Settings
	topics   event.Topics
	auditor  Auditor
	counter  *observability.Counter
	now      func() time.Time
}

// NewInventoryService создаёт новый экземпляр InventoryService
func NewInventoryService(
	logger *zap.Logger,
	repo repository.InventoryRepository,
	catalog repository.CatalogRepository,
	settings Settings,
	topics event.Topics,
	auditor Auditor,
) *InventoryService {
	return &InventoryService{
		logger:   logger,
		repo:     repo,
		catalog:  catalog,
		settings: settings,
		topics:   topics,
		auditor:  auditor,
		counter: observability.NewCounter("github.com/shestoi/GoShop/internal/service",
			"shop.inventory.transactions", "Inventory transactions recorded"),
		now: time.Now,
	}
}

// CreateTransactionInput входные данные складского движения.
// UnitPrice nil: берётся текущая цена товара.
type CreateTransactionInput struct {
	Actor           Actor
	ProductID       int64
	Type            repository.TransactionType
	Reason          repository.Reason
	Quantity        int64
	UnitPrice       *decimal.Decimal
	DiscountPercent decimal.Decimal
	CustomerID      *int64
	Tags            []string
	Note            string
}

// CreateTransaction записывает движение: снимок товара, итоговая сумма и новый остаток
// сохраняются одной транзакцией БД под блокировкой строки товара
func (s *InventoryService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (repository.InventoryTransaction, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return repository.InventoryTransaction{}, err
	}
	tags, err := s.validateTransaction(&input)
	if err != nil {
		return repository.InventoryTransaction{}, err
	}

	allowNegative := s.settings.Bool(SettingAllowNegativeStock, false)
	threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)

	build := func(p repository.Product) (repository.InventoryTransaction, error) {
		if !p.Active {
			return repository.InventoryTransaction{}, repository.ErrProductInactive
		}
		unitPrice := p.Price
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}
		stockAfter := p.Stock + input.Quantity
		if input.Type == repository.TransactionOut {
			stockAfter = p.Stock - input.Quantity
			if stockAfter < 0 && !allowNegative {
				return repository.InventoryTransaction{}, repository.ErrInsufficientStock
			}
		}
		total := LineTotal(unitPrice, input.Quantity, input.DiscountPercent)
		if total.GreaterThan(maxMoney) {
			return repository.InventoryTransaction{}, invalid("quantity", "total price must not exceed %s", maxMoney.String())
		}
		return repository.InventoryTransaction{
			Type:            input.Type,
			Reason:          input.Reason,
			Quantity:        input.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: input.DiscountPercent,
			TotalPrice:      total,
			Snapshot:        snapshotOf(p),
			StockAfter:      stockAfter,
			UserID:          input.Actor.UserID,
			CustomerID:      input.CustomerID,
			Tags:            tags,
			Note:            input.Note,
		}, nil
	}
	newEvent := func(t repository.InventoryTransaction) (repository.OutboxEvent, error) {
		return event.NewOutboxEvent(s.topics, event.TypeTransactionCreated,
			strconv.FormatInt(input.ProductID, 10), event.TransactionCreatedFrom(t, threshold))
	}

	t, err := s.repo.CreateTransactionTx(ctx, input.ProductID, build, newEvent)
	if err != nil {
		return repository.InventoryTransaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.counter.Add(ctx, 1,
		attribute.String("type", string(t.Type)),
		attribute.String("reason", string(t.Reason)),
	)
	s.logger.Info("inventory transaction created",
		zap.Int64("transaction_id", t.ID),
		zap.Int64("product_id", input.ProductID),
		zap.String("type", string(t.Type)),
		zap.String("reason", string(t.Reason)),
		zap.Int64("quantity", t.Quantity),
		zap.Int64("stock_after", t.StockAfter),
	)
	s.auditor.Record(ctx, input.Actor.UserID, "transaction.create", "transaction", strconv.FormatInt(t.ID, 10), map[string]any{
		"product_id": input.ProductID,
		"type":       string(t.Type),
		"reason":     string(t.Reason),
		"quantity":   t.Quantity,
		"total":      t.TotalPrice.StringFixed(2),
	})
	return t, nil
}

func (s *InventoryService) validateTransaction(input *CreateTransactionInput) ([]string, error) {
	if input.ProductID <= 0 {
		return nil, invalid("product_id", "is required")
	}
	if input.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than 0")
	}
	if input.Type != repository.TransactionIn && input.Type != repository.TransactionOut {
		return nil, invalid("type", "must be IN or OUT")
	}
	if !ValidReason(input.Type, input.Reason) {
		return nil, invalid("reason", "%q is not allowed for %s", input.Reason, input.Type)
	}
	maxDiscount := s.settings.Decimal(SettingMaxDiscountPercent, defaultMaxDiscount)
	if err := checkDiscount(input.DiscountPercent, maxDiscount); err != nil {
		return nil, err
	}
	if input.UnitPrice != nil {
		if err := checkMoney("unit_price", *input.UnitPrice); err != nil {
			return nil, err
		}
	}
	if len([]rune(input.Note)) > maxNoteLength {
		return nil, invalid("note", "must be at most %d characters", maxNoteLength)
	}
	return normalizeTags(input.Tags)
}

// normalizeTags обрезает пробелы, приводит к нижнему регистру и убирает дубли
func normalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if len([]rune(t)) > maxTagLength {
			return nil, invalid("tags", "tag %q is longer than %d characters", t, maxTagLength)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return nil, invalid("tags", "at most %d tags allowed", maxTags)
	}
	return tags, nil
}

func snapshotOf(p repository.Product) repository.ProductSnapshot {
	s := repository.ProductSnapshot{
		Name:         p.Name,
		CategoryName: p.CategoryName,
		Color:        p.Color,
		Size:         p.Size,
	}
	if p.ImageID != nil {
		s.Image = *p.ImageID
	}
	return s
}

// GetTransaction возвращает запись журнала
func (s *InventoryService) GetTransaction(ctx context.Context, actor Actor, id int64) (repository.InventoryTransaction, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.InventoryTransaction{}, err
	}
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return repository.InventoryTransaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactionsInput фильтры журнала; диапазон [From, To)
type ListTransactionsInput struct {
	Actor      Actor
	Type       *repository.TransactionType
	Reason     *repository.Reason
	ProductID  *int64
	CustomerID *int64
	OrderID    *int64
	Tag        string
	From       *time.Time
	To         *time.Time
	Page       Page
}

// ListTransactionsOutput страница журнала и агрегаты по всему фильтру
type ListTransactionsOutput struct {
	Items      []repository.InventoryTransaction
	Counts     repository.TransactionCounts
	Page       Page
	TotalPages int64
}

// ListTransactions возвращает страницу и счётчики total/in/out/returning с гистограммой тегов
func (s *InventoryService) ListTransactions(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return nil, err
	}
	if input.Type != nil && *input.Type != repository.TransactionIn && *input.Type != repository.TransactionOut {
		return nil, invalid("type", "must be IN or OUT")
	}
	if input.Reason != nil && !ValidReason(repository.TransactionIn, *input.Reason) && !ValidReason(repository.TransactionOut, *input.Reason) {
		return nil, invalid("reason", "unknown reason %q", *input.Reason)
	}
	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, invalid("from", "must be before to")
	}

	page := input.Page.Normalize()
	filter := repository.TransactionFilter{
		Type:       input.Type,
		Reason:     input.Reason,
		ProductID:  input.ProductID,
		CustomerID: input.CustomerID,
		OrderID:    input.OrderID,
		Tag:        strings.ToLower(strings.TrimSpace(input.Tag)),
		From:       input.From,
		To:         input.To,
		Limit:      page.Size,
		Offset:     page.Offset(),
	}

	items, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	counts, err := s.repo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	return &ListTransactionsOutput{
		Items:      items,
		Counts:     counts,
		Page:       page,
		TotalPages: page.TotalPages(counts.Total),
	}, nil
}

// StatisticsOutput сводка за период
type StatisticsOutput struct {
	From          time.Time
	To            time.Time
	Statistics    repository.Statistics
	LowStockCount int64
	Threshold     int64
}

// GetStatistics сводка за [from, to); нулевой диапазон: текущие сутки
func (s *InventoryService) GetStatistics(ctx context.Context, actor Actor, from, to time.Time) (*StatisticsOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Statistics(ctx, from, to)
}

// Statistics то же, что GetStatistics, без проверки прав (для бота админ-чата)
func (s *InventoryService) Statistics(ctx context.Context, from, to time.Time) (*StatisticsOutput, error) {
	if from.IsZero() && to.IsZero() {
		now := s.now()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return nil, invalid("from", "must be before to")
	}

	st, err := s.repo.Statistics(ctx, from, to, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)
	low, err := s.catalog.CountLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}

	return &StatisticsOutput{
		From:          from,
		To:            to,
		Statistics:    st,
		LowStockCount: low,
		Threshold:     threshold,
	}, nil
}
