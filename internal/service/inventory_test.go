package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/event"
	"github.com/shestoi/GoShop/internal/repository"
	repoMocks "github.com/shestoi/GoShop/internal/repository/mocks"
)

func testProduct() repository.Product {
	img := "0f8fad5b-d9cb-469f-a165-70867728950e"
	return repository.Product{
		ID:           1,
		Name:         "T-shirt",
		CategoryName: "Clothes",
		Color:        "red",
		Size:         "M",
		Price:        dec("100.00"),
		Stock:        10,
		ImageID:      &img,
		Active:       true,
	}
}

// runTransactionTx имитирует репозиторий: вызывает build и event так же, как postgres реализация
func runTransactionTx(product repository.Product, events *[]repository.OutboxEvent) func(context.Context, int64, repository.BuildTransactionFunc, repository.TransactionEventFunc) (repository.InventoryTransaction, error) {
	return func(_ context.Context, productID int64, build repository.BuildTransactionFunc, ev repository.TransactionEventFunc) (repository.InventoryTransaction, error) {
		t, err := build(product)
		if err != nil {
			return repository.InventoryTransaction{}, err
		}
		t.ID = 42
		t.ProductID = &productID
		t.CreatedAt = time.Now()
		e, err := ev(t)
		if err != nil {
			return repository.InventoryTransaction{}, err
		}
		*events = append(*events, e)
		return t, nil
	}
}

func TestInventoryService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	price := dec("80")

	tests := []struct {
		name          string
		actor         Actor
		input         CreateTransactionInput
		product       func() repository.Product
		settings      map[string]any
		expectRepo    bool
		expectedErr   error
		errorContains string
		validate      func(t *testing.T, tx repository.InventoryTransaction, events []repository.OutboxEvent)
	}{
		{
			name:  "success: OUT with discount",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionOut,
				Reason:          repository.ReasonSale,
				Quantity:        3,
				DiscountPercent: dec("10"),
				Tags:            []string{" Promo ", "promo", "VIP"},
			},
			product:    testProduct,
			expectRepo: true,
			validate: func(t *testing.T, tx repository.InventoryTransaction, events []repository.OutboxEvent) {
				require.Equal(t, int64(7), tx.StockAfter)
				require.True(t, dec("270").Equal(tx.TotalPrice))
				require.True(t, dec("100").Equal(tx.UnitPrice))
				require.Equal(t, []string{"promo", "vip"}, tx.Tags)
				require.Equal(t, "T-shirt", tx.Snapshot.Name)
				require.Equal(t, "Clothes", tx.Snapshot.CategoryName)
				require.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", tx.Snapshot.Image)
				require.Equal(t, "admin-1", tx.UserID)

				require.Len(t, events, 1)
				require.Equal(t, "shop.inventory.transaction.created", events[0].Topic)
				require.Equal(t, "1", events[0].AggregateID)

				env, err := event.Decode(events[0].Payload)
				require.NoError(t, err)
				var data event.TransactionCreated
				require.NoError(t, json.Unmarshal(env.Data, &data))
				require.Equal(t, int64(7), data.StockAfter)
				require.False(t, data.LowStock)
				require.Equal(t, "270.00", data.TotalPrice)
			},
		},
		{
			name:  "success: IN with explicit price marks low stock",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonPurchase,
				Quantity:  2,
				UnitPrice: &price,
			},
			product: func() repository.Product {
				p := testProduct()
				p.Stock = 1
				return p
			},
			expectRepo: true,
			validate: func(t *testing.T, tx repository.InventoryTransaction, events []repository.OutboxEvent) {
				require.Equal(t, int64(3), tx.StockAfter)
				require.True(t, dec("160").Equal(tx.TotalPrice))

				env, err := event.Decode(events[0].Payload)
				require.NoError(t, err)
				var data event.TransactionCreated
				require.NoError(t, json.Unmarshal(env.Data, &data))
				require.True(t, data.LowStock)
				require.Equal(t, int64(5), data.Threshold)
			},
		},
		{
			name:  "error: insufficient stock",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionOut,
				Reason:    repository.ReasonWriteOff,
				Quantity:  11,
			},
			product:     testProduct,
			expectRepo:  true,
			expectedErr: repository.ErrInsufficientStock,
		},
		{
			name:  "success: negative stock allowed by setting",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionOut,
				Reason:    repository.ReasonDefect,
				Quantity:  12,
			},
			product:    testProduct,
			settings:   map[string]any{SettingAllowNegativeStock: true},
			expectRepo: true,
			validate: func(t *testing.T, tx repository.InventoryTransaction, _ []repository.OutboxEvent) {
				require.Equal(t, int64(-2), tx.StockAfter)
			},
		},
		{
			name:  "error: inactive product",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonReturn,
				Quantity:  1,
			},
			product: func() repository.Product {
				p := testProduct()
				p.Active = false
				return p
			},
			expectRepo:  true,
			expectedErr: repository.ErrProductInactive,
		},
		{
			name:  "error: reason not allowed for type",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonSale,
				Quantity:  1,
			},
			expectedErr:   ErrValidation,
			errorContains: "reason",
		},
		{
			name:  "error: zero quantity",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonPurchase,
			},
			expectedErr:   ErrValidation,
			errorContains: "quantity",
		},
		{
			name:  "error: discount above setting",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionOut,
				Reason:          repository.ReasonSale,
				Quantity:        1,
				DiscountPercent: dec("30"),
			},
			settings:      map[string]any{SettingMaxDiscountPercent: dec("25")},
			expectedErr:   ErrValidation,
			errorContains: "discount_percent",
		},
		{
			name:  "error: unit price with more than 2 decimals",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionIn,
				Reason:          repository.ReasonPurchase,
				Quantity:        2,
				UnitPrice:       decPtr("1.005"),
				DiscountPercent: dec("12"),
			},
			expectedErr:   ErrValidation,
			errorContains: "unit_price",
		},
		{
			name:  "error: discount with more than 2 decimals",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionOut,
				Reason:          repository.ReasonSale,
				Quantity:        2,
				DiscountPercent: dec("12.345"),
			},
			expectedErr:   ErrValidation,
			errorContains: "discount_percent",
		},
		{
			name:  "error: discount above 100 even if setting allows",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionOut,
				Reason:          repository.ReasonSale,
				Quantity:        1,
				DiscountPercent: dec("150"),
			},
			settings:      map[string]any{SettingMaxDiscountPercent: dec("500")},
			expectedErr:   ErrValidation,
			errorContains: "discount_percent",
		},
		{
			name:  "error: unit price above column range",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonPurchase,
				Quantity:  1,
				UnitPrice: decPtr("1000000000000"),
			},
			expectedErr:   ErrValidation,
			errorContains: "unit_price",
		},
		{
			name:  "error: total above column range",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonPurchase,
				Quantity:  1000000,
				UnitPrice: decPtr("999999999.99"),
			},
			product:       testProduct,
			expectRepo:    true,
			expectedErr:   ErrValidation,
			errorContains: "total price",
		},
		{
			name:  "success: stored values satisfy the total formula",
			actor: adminActor,
			input: CreateTransactionInput{
				ProductID:       1,
				Type:            repository.TransactionIn,
				Reason:          repository.ReasonPurchase,
				Quantity:        2,
				UnitPrice:       decPtr("1.01"),
				DiscountPercent: dec("12.35"),
			},
			product:    testProduct,
			expectRepo: true,
			validate: func(t *testing.T, tx repository.InventoryTransaction, _ []repository.OutboxEvent) {
				require.Equal(t, "1.01", tx.UnitPrice.StringFixed(2))
				require.Equal(t, "12.35", tx.DiscountPercent.StringFixed(2))
				require.Equal(t, "1.77", tx.TotalPrice.StringFixed(2))
				require.True(t, LineTotal(tx.UnitPrice.Round(2), tx.Quantity, tx.DiscountPercent.Round(2)).Equal(tx.TotalPrice))
			},
		},
		{
			name:  "error: regular user",
			actor: userActor,
			input: CreateTransactionInput{
				ProductID: 1,
				Type:      repository.TransactionIn,
				Reason:    repository.ReasonPurchase,
				Quantity:  1,
			},
			expectedErr: ErrForbidden,
		},
		{
			name:        "error: anonymous",
			input:       CreateTransactionInput{ProductID: 1},
			expectedErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoMocks.NewInventoryRepository(t)
			catalog := repoMocks.NewCatalogRepository(t)
			svc := NewInventoryService(zap.NewNop(), repo, catalog, defaultSettings(t, tt.settings), topics, quietAuditor(t))

			var events []repository.OutboxEvent
			if tt.expectRepo {
				repo.On("CreateTransactionTx", mock.Anything, tt.input.ProductID, mock.Anything, mock.Anything).
					Return(runTransactionTx(tt.product(), &events)).Once()
			}

			input := tt.input
			input.Actor = tt.actor
			tx, err := svc.CreateTransaction(ctx, input)

			if tt.expectedErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				if tt.errorContains != "" {
					require.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(42), tx.ID)
			if tt.validate != nil {
				tt.validate(t, tx, events)
			}
		})
	}
}

func TestInventoryService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := repoMocks.NewInventoryRepository(t)
	svc := NewInventoryService(zap.NewNop(), repo, repoMocks.NewCatalogRepository(t), defaultSettings(t, nil), topics, quietAuditor(t))

	typ := repository.TransactionOut
	expectedFilter := repository.TransactionFilter{
		Type:   &typ,
		Tag:    "promo",
		Limit:  10,
		Offset: 20,
	}
	repo.On("ListTransactions", ctx, expectedFilter).
		Return([]repository.InventoryTransaction{{ID: 1}, {ID: 2}}, nil).Once()
	repo.On("CountTransactions", ctx, expectedFilter).
		Return(repository.TransactionCounts{Total: 25, Out: 25, Tags: map[string]int64{"promo": 25}}, nil).Once()

	out, err := svc.ListTransactions(ctx, ListTransactionsInput{
		Actor: adminActor,
		Type:  &typ,
		Tag:   " Promo ",
		Page:  Page{Number: 3, Size: 10},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.Equal(t, int64(25), out.Counts.Total)
	require.Equal(t, int64(3), out.TotalPages)
	require.Equal(t, int64(25), out.Counts.Tags["promo"])
}

func TestInventoryService_ListTransactions_Validation(t *testing.T) {
	svc := NewInventoryService(zap.NewNop(), repoMocks.NewInventoryRepository(t), repoMocks.NewCatalogRepository(t),
		defaultSettings(t, nil), topics, quietAuditor(t))

	reason := repository.Reason("GIFT")
	_, err := svc.ListTransactions(context.Background(), ListTransactionsInput{Actor: adminActor, Reason: &reason})
	require.ErrorIs(t, err, ErrValidation)

	from := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = svc.ListTransactions(context.Background(), ListTransactionsInput{Actor: adminActor, From: &from, To: &to})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ListTransactions(context.Background(), ListTransactionsInput{Actor: userActor})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestInventoryService_Statistics_DefaultsToToday(t *testing.T) {
	ctx := context.Background()
	repo := repoMocks.NewInventoryRepository(t)
	catalog := repoMocks.NewCatalogRepository(t)
	svc := NewInventoryService(zap.NewNop(), repo, catalog,
		defaultSettings(t, map[string]any{SettingLowStockThreshold: int64(3)}), topics, quietAuditor(t))
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC) }

	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)
	repo.On("Statistics", ctx, from, to, topProductsLimit).
		Return(repository.Statistics{QuantityOut: 4, AmountOut: decimal.NewFromInt(400)}, nil).Once()
	catalog.On("CountLowStock", ctx, int64(3)).Return(int64(2), nil).Once()

	out, err := svc.GetStatistics(ctx, adminActor, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, from, out.From)
	require.Equal(t, to, out.To)
	require.Equal(t, int64(4), out.Statistics.QuantityOut)
	require.Equal(t, int64(2), out.LowStockCount)
	require.Equal(t, int64(3), out.Threshold)
}

func TestNormalizeTags(t *testing.T) {
	tags, err := normalizeTags([]string{"A", " a ", "", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tags)

	many := make([]string, 0, maxTags+1)
	for i := 0; i <= maxTags; i++ {
		many = append(many, string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	_, err = normalizeTags(many)
	require.ErrorIs(t, err, ErrValidation)
}
