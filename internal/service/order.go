package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/platform/observability"
)

const maxCommentLength = 1000

// transitions допустимые переходы статусов заказа
var transitions = map[repository.OrderStatus][]repository.OrderStatus{
	repository.OrderNew:       {repository.OrderConfirmed, repository.OrderCancelled},
	repository.OrderConfirmed: {repository.OrderShipped, repository.OrderCancelled},
	repository.OrderShipped:   {repository.OrderDelivered},
}

// CanTransition проверяет переход from -> to
func CanTransition(from, to repository.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderService оформление заказов и смена статусов
type OrderService struct {
	logger    *zap.Logger
	repo      repository.OrderRepository
	customers repository.CustomerRepository
	settings  Settings
	topics    event.Topics
	auditor   Auditor
	counter   *observability.Counter
	newNumber func() string
}

// NewOrderService создаёт новый экземпляр OrderService
func NewOrderService(
	logger *zap.Logger,
	repo repository.OrderRepository,
	customers repository.CustomerRepository,
	settings Settings,
	topics event.Topics,
	auditor Auditor,
) *OrderService {
	return &OrderService{
		logger:    logger,
		repo:      repo,
		customers: customers,
		settings:  settings,
		topics:    topics,
		auditor:   auditor,
		counter: observability.NewCounter("github.com/shestoi/GoShop/internal/service",
			"shop.orders.created", "Orders created"),
		newNumber: func() string { return "ORD-" + ulid.Make().String() },
	}
}

// OrderItemInput позиция заказа
type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

// CreateOrderInput входные данные заказа. Скидку может задать только администратор.
type CreateOrderInput struct {
	Actor           Actor
	CustomerID      *int64
	Items           []OrderItemInput
	DiscountPercent decimal.Decimal
	Comment         string
}

// CreateOrder оформляет заказ: блокирует товары, списывает остатки OUT/SALE записями,
// пишет заказ и outbox события одной транзакцией БД
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (repository.Order, error) {
	if input.Actor.UserID == "" {
		return repository.Order{}, ErrUnauthorized
	}
	if err := s.validateOrder(ctx, &input); err != nil {
		return repository.Order{}, err
	}

	allowNegative := s.settings.Bool(SettingAllowNegativeStock, false)
	threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)
	number := s.newNumber()

	productIDs := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		productIDs = append(productIDs, it.ProductID)
	}

	build := func(products map[int64]repository.Product) (repository.OrderPlan, error) {
		order := repository.Order{
			Number:          number,
			UserID:          input.Actor.UserID,
			CustomerID:      input.CustomerID,
			Status:          repository.OrderNew,
			DiscountPercent: input.DiscountPercent,
			Total:           decimal.Zero,
			Comment:         input.Comment,
			Items:           make([]repository.OrderItem, 0, len(input.Items)),
		}
		txs := make([]repository.InventoryTransaction, 0, len(input.Items))

		for _, it := range input.Items {
			p, ok := products[it.ProductID]
			if !ok {
				return repository.OrderPlan{}, fmt.Errorf("product %d: %w", it.ProductID, repository.ErrNotFound)
			}
			if !p.Active {
				return repository.OrderPlan{}, fmt.Errorf("product %d: %w", p.ID, repository.ErrProductInactive)
			}
			stockAfter := p.Stock - it.Quantity
			if stockAfter < 0 && !allowNegative {
				return repository.OrderPlan{}, fmt.Errorf("product %d: %w", p.ID, repository.ErrInsufficientStock)
			}

			lineTotal := LineTotal(p.Price, it.Quantity, input.DiscountPercent)
			snapshot := snapshotOf(p)
			productID := p.ID

			order.Items = append(order.Items, repository.OrderItem{
				ProductID:  &productID,
				Quantity:   it.Quantity,
				UnitPrice:  p.Price,
				TotalPrice: lineTotal,
				Snapshot:   snapshot,
			})
			txs = append(txs, repository.InventoryTransaction{
				Type:            repository.TransactionOut,
				Reason:          repository.ReasonSale,
				ProductID:       &productID,
				Quantity:        it.Quantity,
				UnitPrice:       p.Price,
				DiscountPercent: input.DiscountPercent,
				TotalPrice:      lineTotal,
				Snapshot:        snapshot,
				StockAfter:      stockAfter,
				UserID:          input.Actor.UserID,
				CustomerID:      input.CustomerID,
				Note:            "order " + number,
			})
			order.Total = order.Total.Add(lineTotal)
		}
		if order.Total.GreaterThan(maxMoney) {
			return repository.OrderPlan{}, invalid("items", "order total must not exceed %s", maxMoney.String())
		}
		return repository.OrderPlan{Order: order, Transactions: txs}, nil
	}

	newEvents := func(o repository.Order, txs []repository.InventoryTransaction) ([]repository.OutboxEvent, error) {
		return s.orderEvents(o, txs, threshold, event.TypeOrderCreated, event.OrderCreatedFrom(o))
	}

	order, err := s.repo.CreateTx(ctx, productIDs, build, newEvents)
	if err != nil {
		return repository.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.counter.Add(ctx, 1)
	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("number", order.Number),
		zap.String("user_id", order.UserID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *OrderService) validateOrder(ctx context.Context, input *CreateOrderInput) error {
	if len(input.Items) == 0 {
		return invalid("items", "order must contain at least one item")
	}
	seen := make(map[int64]struct{}, len(input.Items))
	for i, it := range input.Items {
		if it.ProductID <= 0 {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if it.Quantity <= 0 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if _, ok := seen[it.ProductID]; ok {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "duplicate product %d", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}

	if !input.DiscountPercent.IsZero() {
		if !input.Actor.IsAdmin() {
			return invalid("discount_percent", "only administrators can set a discount")
		}
		maxDiscount := s.settings.Decimal(SettingMaxDiscountPercent, defaultMaxDiscount)
		if err := checkDiscount(input.DiscountPercent, maxDiscount); err != nil {
			return err
		}
	}

	input.Comment = strings.TrimSpace(input.Comment)
	if len([]rune(input.Comment)) > maxCommentLength {
		return invalid("comment", "must be at most %d characters", maxCommentLength)
	}

	if input.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *input.CustomerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("customer_id", "customer %d not found", *input.CustomerID)
			}
			return fmt.Errorf("get customer: %w", err)
		}
	}
	return nil
}

// orderEvents событие заказа плюс inventory.transaction.created на каждую складскую запись
func (s *OrderService) orderEvents(
	o repository.Order,
	txs []repository.InventoryTransaction,
	threshold int64,
	eventType string,
	data any,
) ([]repository.OutboxEvent, error) {
	aggregateID := strconv.FormatInt(o.ID, 10)
	events := make([]repository.OutboxEvent, 0, len(txs)+1)

	ev, err := event.NewOutboxEvent(s.topics, eventType, aggregateID, data)
	if err != nil {
		return nil, err
	}
	events = append(events, ev)

	for _, t := range txs {
		productKey := aggregateID
		if t.ProductID != nil {
			productKey = strconv.FormatInt(*t.ProductID, 10)
		}
		ev, err := event.NewOutboxEvent(s.topics, event.TypeTransactionCreated, productKey, event.TransactionCreatedFrom(t, threshold))
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ChangeStatusInput смена статуса заказа
type ChangeStatusInput struct {
	Actor   Actor
	OrderID int64
	Status  repository.OrderStatus
}

// ChangeStatus переводит заказ по машине состояний. Отмена возвращает товар на склад
// IN/CANCELLATION записями в той же транзакции. Владелец может только отменить свой NEW заказ.
func (s *OrderService) ChangeStatus(ctx context.Context, input ChangeStatusInput) (repository.Order, error) {
	if input.Actor.UserID == "" {
		return repository.Order{}, ErrUnauthorized
	}
	switch input.Status {
	case repository.OrderNew, repository.OrderConfirmed, repository.OrderShipped,
		repository.OrderDelivered, repository.OrderCancelled:
	default:
		return repository.Order{}, invalid("status", "unknown status %q", input.Status)
	}

	threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)
	var from repository.OrderStatus

	change := func(o repository.Order, products map[int64]repository.Product) (repository.StatusPlan, error) {
		if !input.Actor.IsAdmin() {
			if o.UserID != input.Actor.UserID {
				return repository.StatusPlan{}, ErrForbidden
			}
			if o.Status != repository.OrderNew || input.Status != repository.OrderCancelled {
				return repository.StatusPlan{}, ErrForbidden
			}
		}
		if !CanTransition(o.Status, input.Status) {
			return repository.StatusPlan{}, fmt.Errorf("%s -> %s: %w", o.Status, input.Status, ErrInvalidTransition)
		}
		from = o.Status

		plan := repository.StatusPlan{Status: input.Status}
		if input.Status != repository.OrderCancelled {
			return plan, nil
		}
		for _, it := range o.Items {
			if it.ProductID == nil {
				continue
			}
			p, ok := products[*it.ProductID]
			if !ok {
				continue
			}
			productID := p.ID
			plan.Transactions = append(plan.Transactions, repository.InventoryTransaction{
				Type:            repository.TransactionIn,
				Reason:          repository.ReasonCancellation,
				ProductID:       &productID,
				Quantity:        it.Quantity,
				UnitPrice:       it.UnitPrice,
				DiscountPercent: o.DiscountPercent,
				TotalPrice:      it.TotalPrice,
				Snapshot:        snapshotOf(p),
				StockAfter:      p.Stock + it.Quantity,
				UserID:          input.Actor.UserID,
				CustomerID:      o.CustomerID,
				Note:            "cancel order " + o.Number,
			})
		}
		return plan, nil
	}

	newEvents := func(o repository.Order, txs []repository.InventoryTransaction) ([]repository.OutboxEvent, error) {
		return s.orderEvents(o, txs, threshold, event.TypeOrderStatusChanged, event.OrderStatusChanged{
			OrderID: o.ID,
			Number:  o.Number,
			From:    string(from),
			Status:  string(o.Status),
			Total:   o.Total.StringFixed(2),
		})
	}

	order, err := s.repo.ChangeStatusTx(ctx, input.OrderID, change, newEvents)
	if err != nil {
		return repository.Order{}, fmt.Errorf("change order status: %w", err)
	}

	s.logger.Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
	)
	s.auditor.Record(ctx, input.Actor.UserID, "order.status", "order", strconv.FormatInt(order.ID, 10), map[string]any{
		"from": string(from),
		"to":   string(order.Status),
	})
	return order, nil
}

// GetOrder заказ по id; обычный пользователь видит только свои
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id int64) (repository.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, checkOwner(actor, o)
}

// GetOrderByNumber заказ по публичному номеру
func (s *OrderService) GetOrderByNumber(ctx context.Context, actor Actor, number string) (repository.Order, error) {
	o, err := s.repo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return repository.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, checkOwner(actor, o)
}

// FindByNumber заказ по номеру без проверки прав (для бота админ-чата)
func (s *OrderService) FindByNumber(ctx context.Context, number string) (repository.Order, error) {
	o, err := s.repo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return repository.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func checkOwner(actor Actor, o repository.Order) error {
	if actor.UserID == "" {
		return ErrUnauthorized
	}
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return ErrForbidden
	}
	return nil
}

// ListOrdersInput фильтры заказов
type ListOrdersInput struct {
	Actor      Actor
	Status     *repository.OrderStatus
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Page       Page
}

// ListOrdersOutput страница заказов
type ListOrdersOutput struct {
	Items      []repository.Order
	Total      int64
	Page       Page
	TotalPages int64
}

// ListOrders страница заказов; для не-админа фильтр по своему user_id
func (s *OrderService) ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersOutput, error) {
	if input.Actor.UserID == "" {
		return nil, ErrUnauthorized
	}
	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, invalid("from", "must be before to")
	}
	page := input.Page.Normalize()
	filter := repository.OrderFilter{
		Status:     input.Status,
		CustomerID: input.CustomerID,
		From:       input.From,
		To:         input.To,
		Limit:      page.Size,
		Offset:     page.Offset(),
	}
	if !input.Actor.IsAdmin() {
		filter.UserID = input.Actor.UserID
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &ListOrdersOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: page.TotalPages(total),
	}, nil
}

// CountOpen число открытых заказов пользователя (для GLOBAL токена)
func (s *OrderService) CountOpen(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountOpenByUser(ctx, userID)
}
