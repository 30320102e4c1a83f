package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	"github.com/shestoi/GoShop/internal/repository"
	repoMocks "github.com/shestoi/GoShop/internal/repository/mocks"
)

func newTestOrderService(t *testing.T, settings map[string]any) (*OrderService, *repoMocks.OrderRepository, *repoMocks.CustomerRepository) {
	repo := repoMocks.NewOrderRepository(t)
	customers := repoMocks.NewCustomerRepository(t)
	svc := NewOrderService(zap.NewNop(), repo, customers, defaultSettings(t, settings), topics, quietAuditor(t))
	svc.newNumber = func() string { return "ORD-TEST" }
	return svc, repo, customers
}

// runCreateTx имитирует OrderRepository.CreateTx: build по товарам, присвоение id, события
func runCreateTx(products map[int64]repository.Product, events *[]repository.OutboxEvent) func(context.Context, []int64, repository.BuildOrderFunc, repository.OrderEventFunc) (repository.Order, error) {
	return func(_ context.Context, _ []int64, build repository.BuildOrderFunc, ev repository.OrderEventFunc) (repository.Order, error) {
		plan, err := build(products)
		if err != nil {
			return repository.Order{}, err
		}
		plan.Order.ID = 7
		for i := range plan.Transactions {
			plan.Transactions[i].ID = int64(100 + i)
			plan.Transactions[i].OrderID = &plan.Order.ID
		}
		out, err := ev(plan.Order, plan.Transactions)
		if err != nil {
			return repository.Order{}, err
		}
		*events = append(*events, out...)
		return plan.Order, nil
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	second := testProduct()
	second.ID = 2
	second.Name = "Jeans"
	second.Price = dec("49.99")
	second.Stock = 2

	products := map[int64]repository.Product{1: testProduct(), 2: second}

	tests := []struct {
		name        string
		input       CreateOrderInput
		products    map[int64]repository.Product
		expectRepo  bool
		expectedErr error
		validate    func(t *testing.T, o repository.Order, events []repository.OutboxEvent)
	}{
		{
			name: "success: two items, admin discount",
			input: CreateOrderInput{
				Actor:           adminActor,
				Items:           []OrderItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
				DiscountPercent: dec("10"),
				Comment:         "  call before delivery ",
			},
			products:   products,
			expectRepo: true,
			validate: func(t *testing.T, o repository.Order, events []repository.OutboxEvent) {
				require.Equal(t, "ORD-TEST", o.Number)
				require.Equal(t, repository.OrderNew, o.Status)
				require.Equal(t, "call before delivery", o.Comment)
				require.Len(t, o.Items, 2)
				require.True(t, dec("180").Equal(o.Items[0].TotalPrice))
				// 49.99 * 0.9 = 44.991 -> 44.99
				require.True(t, dec("44.99").Equal(o.Items[1].TotalPrice))
				require.True(t, dec("224.99").Equal(o.Total))

				require.Len(t, events, 3)
				require.Equal(t, event.TypeOrderCreated, events[0].EventType)
				require.Equal(t, "shop.order.created", events[0].Topic)
				require.Equal(t, "7", events[0].AggregateID)
				require.Equal(t, event.TypeTransactionCreated, events[1].EventType)
				require.Equal(t, "1", events[1].AggregateID)
				require.Equal(t, "2", events[2].AggregateID)
			},
		},
		{
			name: "error: insufficient stock on second item",
			input: CreateOrderInput{
				Actor: userActor,
				Items: []OrderItemInput{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}},
			},
			products:    products,
			expectRepo:  true,
			expectedErr: repository.ErrInsufficientStock,
		},
		{
			name: "error: product missing",
			input: CreateOrderInput{
				Actor: userActor,
				Items: []OrderItemInput{{ProductID: 3, Quantity: 1}},
			},
			products:    products,
			expectRepo:  true,
			expectedErr: repository.ErrNotFound,
		},
		{
			name: "error: user cannot set discount",
			input: CreateOrderInput{
				Actor:           userActor,
				Items:           []OrderItemInput{{ProductID: 1, Quantity: 1}},
				DiscountPercent: dec("5"),
			},
			expectedErr: ErrValidation,
		},
		{
			name: "error: admin discount with more than 2 decimals",
			input: CreateOrderInput{
				Actor:           adminActor,
				Items:           []OrderItemInput{{ProductID: 1, Quantity: 1}},
				DiscountPercent: dec("12.345"),
			},
			expectedErr: ErrValidation,
		},
		{
			name:        "error: empty items",
			input:       CreateOrderInput{Actor: userActor},
			expectedErr: ErrValidation,
		},
		{
			name: "error: duplicate product",
			input: CreateOrderInput{
				Actor: userActor,
				Items: []OrderItemInput{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}},
			},
			expectedErr: ErrValidation,
		},
		{
			name: "error: anonymous",
			input: CreateOrderInput{
				Items: []OrderItemInput{{ProductID: 1, Quantity: 1}},
			},
			expectedErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestOrderService(t, nil)

			var events []repository.OutboxEvent
			if tt.expectRepo {
				repo.On("CreateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(runCreateTx(tt.products, &events)).Once()
			}

			o, err := svc.CreateOrder(ctx, tt.input)
			if tt.expectedErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, o, events)
		})
	}
}

func TestOrderService_CreateOrder_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, customers := newTestOrderService(t, nil)

	customerID := int64(9)
	customers.On("GetByID", ctx, customerID).Return(repository.Customer{}, repository.ErrNotFound).Once()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		Actor:      userActor,
		CustomerID: &customerID,
		Items:      []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "customer_id")
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(repository.OrderNew, repository.OrderConfirmed))
	require.True(t, CanTransition(repository.OrderConfirmed, repository.OrderCancelled))
	require.True(t, CanTransition(repository.OrderShipped, repository.OrderDelivered))
	require.False(t, CanTransition(repository.OrderShipped, repository.OrderCancelled))
	require.False(t, CanTransition(repository.OrderDelivered, repository.OrderNew))
	require.False(t, CanTransition(repository.OrderCancelled, repository.OrderConfirmed))
}

func TestOrderService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	productID := int64(1)
	customerID := int64(3)

	baseOrder := func(status repository.OrderStatus) repository.Order {
		return repository.Order{
			ID:              7,
			Number:          "ORD-TEST",
			UserID:          "user-1",
			CustomerID:      &customerID,
			Status:          status,
			DiscountPercent: dec("0"),
			Total:           dec("200"),
			Items: []repository.OrderItem{{
				ProductID:  &productID,
				Quantity:   2,
				UnitPrice:  dec("100"),
				TotalPrice: dec("200"),
			}},
		}
	}

	tests := []struct {
		name        string
		actor       Actor
		current     repository.OrderStatus
		target      repository.OrderStatus
		expectedErr error
		validate    func(t *testing.T, plan repository.StatusPlan, events []repository.OutboxEvent)
	}{
		{
			name:    "admin confirms",
			actor:   adminActor,
			current: repository.OrderNew,
			target:  repository.OrderConfirmed,
			validate: func(t *testing.T, plan repository.StatusPlan, events []repository.OutboxEvent) {
				require.Empty(t, plan.Transactions)
				require.Len(t, events, 1)
				require.Equal(t, event.TypeOrderStatusChanged, events[0].EventType)
			},
		},
		{
			name:    "owner cancels NEW order and stock returns",
			actor:   userActor,
			current: repository.OrderNew,
			target:  repository.OrderCancelled,
			validate: func(t *testing.T, plan repository.StatusPlan, events []repository.OutboxEvent) {
				require.Len(t, plan.Transactions, 1)
				tx := plan.Transactions[0]
				require.Equal(t, repository.TransactionIn, tx.Type)
				require.Equal(t, repository.ReasonCancellation, tx.Reason)
				require.Equal(t, int64(2), tx.Quantity)
				require.Equal(t, int64(12), tx.StockAfter)
				require.Equal(t, &customerID, tx.CustomerID)
				require.Len(t, events, 2)
			},
		},
		{
			name:        "owner cannot cancel CONFIRMED order",
			actor:       userActor,
			current:     repository.OrderConfirmed,
			target:      repository.OrderCancelled,
			expectedErr: ErrForbidden,
		},
		{
			name:        "other user cannot touch order",
			actor:       Actor{UserID: "user-2", Role: repository.RoleUser},
			current:     repository.OrderNew,
			target:      repository.OrderCancelled,
			expectedErr: ErrForbidden,
		},
		{
			name:        "shipped cannot be cancelled",
			actor:       adminActor,
			current:     repository.OrderShipped,
			target:      repository.OrderCancelled,
			expectedErr: ErrInvalidTransition,
		},
		{
			name:        "delivered is terminal",
			actor:       adminActor,
			current:     repository.OrderDelivered,
			target:      repository.OrderShipped,
			expectedErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestOrderService(t, nil)

			var (
				plan   repository.StatusPlan
				events []repository.OutboxEvent
			)
			repo.On("ChangeStatusTx", mock.Anything, int64(7), mock.Anything, mock.Anything).
				Return(func(_ context.Context, _ int64, change repository.ChangeStatusFunc, ev repository.OrderEventFunc) (repository.Order, error) {
					o := baseOrder(tt.current)
					var err error
					plan, err = change(o, map[int64]repository.Product{1: testProduct()})
					if err != nil {
						return repository.Order{}, err
					}
					o.Status = plan.Status
					events, err = ev(o, plan.Transactions)
					if err != nil {
						return repository.Order{}, err
					}
					return o, nil
				}).Once()

			o, err := svc.ChangeStatus(ctx, ChangeStatusInput{Actor: tt.actor, OrderID: 7, Status: tt.target})
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.target, o.Status)
			tt.validate(t, plan, events)
		})
	}
}

func TestOrderService_ChangeStatus_UnknownStatus(t *testing.T) {
	svc, _, _ := newTestOrderService(t, nil)
	_, err := svc.ChangeStatus(context.Background(), ChangeStatusInput{Actor: adminActor, OrderID: 7, Status: "LOST"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestOrderService(t, nil)

	repo.On("GetByID", ctx, int64(7)).Return(repository.Order{ID: 7, UserID: "user-1"}, nil)

	_, err := svc.GetOrder(ctx, userActor, 7)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, adminActor, 7)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Actor{UserID: "user-2", Role: repository.RoleUser}, 7)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_ListOrders_ScopesRegularUser(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestOrderService(t, nil)

	repo.On("List", ctx, repository.OrderFilter{UserID: "user-1", Limit: DefaultPageSize}).
		Return([]repository.Order{{ID: 1}}, int64(1), nil).Once()
	repo.On("List", ctx, repository.OrderFilter{Limit: 5, Offset: 5}).
		Return([]repository.Order{{ID: 2}}, int64(6), nil).Once()

	out, err := svc.ListOrders(ctx, ListOrdersInput{Actor: userActor})
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)

	out, err = svc.ListOrders(ctx, ListOrdersInput{Actor: adminActor, Page: Page{Number: 2, Size: 5}})
	require.NoError(t, err)
	require.Equal(t, int64(2), out.TotalPages)
}
