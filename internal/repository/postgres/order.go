package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

const orderColumns = `id, number, user_id::text, customer_id, status, discount_percent, total, comment, created_at, updated_at`

// OrderRepository реализует repository.OrderRepository используя PostgreSQL
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository создаёт новый PostgreSQL репозиторий заказов
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateTx создаёт заказ в одной транзакции с движениями по складу и outbox событием
func (r *OrderRepository) CreateTx(
	ctx context.Context,
	productIDs []int64,
	build repository.BuildOrderFunc,
	event repository.OrderEventFunc,
) (repository.Order, error) {
	ids := uniqueSorted(productIDs)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return repository.Order{}, err
	}
	defer rollback(ctx, tx)

	products, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return repository.Order{}, fmt.Errorf("lock products: %w", err)
	}
	if len(products) != len(ids) {
		return repository.Order{}, repository.ErrNotFound
	}

	plan, err := build(products)
	if err != nil {
		return repository.Order{}, err
	}
	order := plan.Order

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (number, user_id, customer_id, status, discount_percent, total, comment)
		 VALUES ($1, $2::uuid, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		order.Number, order.UserID, order.CustomerID, string(order.Status),
		order.DiscountPercent, order.Total, order.Comment).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.Order{}, repository.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price,
				product_name, product_image, product_category_name, product_color, product_size)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice,
			item.Snapshot.Name, item.Snapshot.Image, item.Snapshot.CategoryName,
			item.Snapshot.Color, item.Snapshot.Size).
			Scan(&item.ID)
		if err != nil {
			return repository.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := applyTransactions(ctx, tx, order.ID, plan.Transactions); err != nil {
		return repository.Order{}, err
	}

	if err := insertOrderEvents(ctx, tx, event, order, plan.Transactions); err != nil {
		return repository.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.Order{}, err
	}
	return order, nil
}

// ChangeStatusTx блокирует заказ (FOR UPDATE), затем его товары по возрастанию id
func (r *OrderRepository) ChangeStatusTx(
	ctx context.Context,
	orderID int64,
	change repository.ChangeStatusFunc,
	event repository.OrderEventFunc,
) (repository.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return repository.Order{}, err
	}
	defer rollback(ctx, tx)

	order, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, err
	}
	if order.Items, err = loadItems(ctx, tx, order.ID); err != nil {
		return repository.Order{}, err
	}

	ids := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	products, err := lockProducts(ctx, tx, uniqueSorted(ids))
	if err != nil {
		return repository.Order{}, fmt.Errorf("lock products: %w", err)
	}

	plan, err := change(order, products)
	if err != nil {
		return repository.Order{}, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		order.ID, string(plan.Status)).Scan(&order.UpdatedAt)
	if err != nil {
		return repository.Order{}, fmt.Errorf("update order status: %w", err)
	}
	order.Status = plan.Status

	if err := applyTransactions(ctx, tx, order.ID, plan.Transactions); err != nil {
		return repository.Order{}, err
	}

	if err := insertOrderEvents(ctx, tx, event, order, plan.Transactions); err != nil {
		return repository.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (repository.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (repository.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (repository.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, err
	}
	if order.Items, err = loadItems(ctx, r.pool, order.ID); err != nil {
		return repository.Order{}, err
	}
	return order, nil
}

// List возвращает страницу заказов без позиций
func (r *OrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]repository.Order, int64, error) {
	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": string(*f.Status)})
	}
	if f.UserID != "" {
		where = append(where, sq.Expr("user_id = ?::uuid", f.UserID))
	}
	if f.CustomerID != nil {
		where = append(where, sq.Eq{"customer_id": *f.CustomerID})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.Lt{"created_at": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("orders").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query, args, err := psql.Select(orderColumns).From("orders").Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]repository.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders
		 WHERE user_id = $1::uuid AND status IN ('NEW', 'CONFIRMED', 'SHIPPED')`, userID).Scan(&n)
	return n, err
}

func insertOrderEvents(ctx context.Context, q querier, event repository.OrderEventFunc, order repository.Order, transactions []repository.InventoryTransaction) error {
	if event == nil {
		return nil
	}
	events, err := event(order, transactions)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := insertOutboxEvent(ctx, q, ev); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

// applyTransactions пишет складские записи заказа и выставляет остатки товаров
func applyTransactions(ctx context.Context, q querier, orderID int64, transactions []repository.InventoryTransaction) error {
	for i := range transactions {
		t := &transactions[i]
		t.OrderID = &orderID
		if err := insertTransaction(ctx, q, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if t.ProductID != nil {
			if err := updateStock(ctx, q, *t.ProductID, t.StockAfter); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
		}
	}
	return nil
}

func loadItems(ctx context.Context, q querier, orderID int64) ([]repository.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, product_id, quantity, unit_price, total_price,
		        product_name, product_image, product_category_name, product_color, product_size
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]repository.OrderItem, 0)
	for rows.Next() {
		var it repository.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice,
			&it.Snapshot.Name, &it.Snapshot.Image, &it.Snapshot.CategoryName,
			&it.Snapshot.Color, &it.Snapshot.Size); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (repository.Order, error) {
	var o repository.Order
	var status string
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.CustomerID, &status,
		&o.DiscountPercent, &o.Total, &o.Comment, &o.CreatedAt, &o.UpdatedAt)
	o.Status = repository.OrderStatus(status)
	return o, err
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
