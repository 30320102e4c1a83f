package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

const transactionColumns = `id, type, reason, product_id, quantity, unit_price, discount_percent, total_price,
	product_name, product_image, product_category_name, product_color, product_size,
	stock_after, user_id, customer_id, order_id, tags, note, created_at`

// InventoryRepository реализует repository.InventoryRepository используя PostgreSQL
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository создаёт новый PostgreSQL репозиторий складского журнала
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// CreateTransactionTx блокирует товар, строит запись через build и одним коммитом
// сохраняет запись, новый остаток и outbox событие
func (r *InventoryRepository) CreateTransactionTx(
	ctx context.Context,
	productID int64,
	build repository.BuildTransactionFunc,
	event repository.TransactionEventFunc,
) (repository.InventoryTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return repository.InventoryTransaction{}, err
	}
	defer rollback(ctx, tx)

	products, err := lockProducts(ctx, tx, []int64{productID})
	if err != nil {
		return repository.InventoryTransaction{}, fmt.Errorf("lock product: %w", err)
	}
	product, ok := products[productID]
	if !ok {
		return repository.InventoryTransaction{}, repository.ErrNotFound
	}

	t, err := build(product)
	if err != nil {
		return repository.InventoryTransaction{}, err
	}
	t.ProductID = &product.ID

	if err := insertTransaction(ctx, tx, &t); err != nil {
		return repository.InventoryTransaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if err := updateStock(ctx, tx, product.ID, t.StockAfter); err != nil {
		return repository.InventoryTransaction{}, fmt.Errorf("update stock: %w", err)
	}

	if event != nil {
		ev, err := event(t)
		if err != nil {
			return repository.InventoryTransaction{}, err
		}
		if err := insertOutboxEvent(ctx, tx, ev); err != nil {
			return repository.InventoryTransaction{}, fmt.Errorf("insert outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.InventoryTransaction{}, err
	}
	return t, nil
}

func (r *InventoryRepository) GetTransaction(ctx context.Context, id int64) (repository.InventoryTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM inventory_transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.InventoryTransaction{}, repository.ErrNotFound
		}
		return repository.InventoryTransaction{}, err
	}
	return t, nil
}

// ListTransactions возвращает страницу журнала, новые записи первыми
func (r *InventoryRepository) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]repository.InventoryTransaction, error) {
	query, args, err := psql.Select(transactionColumns).
		From("inventory_transactions").
		Where(transactionWhere(f)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]repository.InventoryTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// CountTransactions считает total/in/out/returning и гистограмму тегов по всему фильтру
func (r *InventoryRepository) CountTransactions(ctx context.Context, f repository.TransactionFilter) (repository.TransactionCounts, error) {
	where := transactionWhere(f)

	query, args, err := psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE type = 'IN')",
		"COUNT(*) FILTER (WHERE type = 'OUT')",
		"COUNT(*) FILTER (WHERE reason = 'RETURN')",
	).From("inventory_transactions").Where(where).ToSql()
	if err != nil {
		return repository.TransactionCounts{}, err
	}

	counts := repository.TransactionCounts{Tags: make(map[string]int64)}
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&counts.Total, &counts.In, &counts.Out, &counts.Returning); err != nil {
		return repository.TransactionCounts{}, fmt.Errorf("count transactions: %w", err)
	}

	query, args, err = psql.Select("tag", "COUNT(*)").
		From("inventory_transactions CROSS JOIN LATERAL unnest(tags) AS tag").
		Where(where).
		GroupBy("tag").
		ToSql()
	if err != nil {
		return repository.TransactionCounts{}, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return repository.TransactionCounts{}, fmt.Errorf("count tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		var n int64
		if err := rows.Scan(&tag, &n); err != nil {
			return repository.TransactionCounts{}, err
		}
		counts.Tags[tag] = n
	}
	return counts, rows.Err()
}

// Statistics сводка за [from, to)
func (r *InventoryRepository) Statistics(ctx context.Context, from, to time.Time, topLimit int) (repository.Statistics, error) {
	st := repository.Statistics{ByReason: make(map[repository.Reason]int64)}

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0)::bigint,
		        COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)::bigint,
		        COALESCE(SUM(total_price) FILTER (WHERE type = 'IN'), 0),
		        COALESCE(SUM(total_price) FILTER (WHERE type = 'OUT'), 0)
		 FROM inventory_transactions
		 WHERE created_at >= $1 AND created_at < $2`, from, to).
		Scan(&st.QuantityIn, &st.QuantityOut, &st.AmountIn, &st.AmountOut)
	if err != nil {
		return repository.Statistics{}, fmt.Errorf("sum transactions: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT reason, COUNT(*)
		 FROM inventory_transactions
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY reason`, from, to)
	if err != nil {
		return repository.Statistics{}, fmt.Errorf("count reasons: %w", err)
	}
	for rows.Next() {
		var reason string
		var n int64
		if err := rows.Scan(&reason, &n); err != nil {
			rows.Close()
			return repository.Statistics{}, err
		}
		st.ByReason[repository.Reason(reason)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return repository.Statistics{}, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT product_id, MAX(product_name), SUM(quantity)::bigint AS qty
		 FROM inventory_transactions
		 WHERE type = 'OUT' AND created_at >= $1 AND created_at < $2
		 GROUP BY product_id
		 ORDER BY qty DESC, product_id
		 LIMIT $3`, from, to, topLimit)
	if err != nil {
		return repository.Statistics{}, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	st.TopProducts = make([]repository.ProductQuantity, 0, topLimit)
	for rows.Next() {
		var pq repository.ProductQuantity
		if err := rows.Scan(&pq.ProductID, &pq.Name, &pq.Quantity); err != nil {
			return repository.Statistics{}, err
		}
		st.TopProducts = append(st.TopProducts, pq)
	}
	return st, rows.Err()
}

func transactionWhere(f repository.TransactionFilter) sq.And {
	where := sq.And{}
	if f.Type != nil {
		where = append(where, sq.Eq{"type": string(*f.Type)})
	}
	if f.Reason != nil {
		where = append(where, sq.Eq{"reason": string(*f.Reason)})
	}
	if f.ProductID != nil {
		where = append(where, sq.Eq{"product_id": *f.ProductID})
	}
	if f.CustomerID != nil {
		where = append(where, sq.Eq{"customer_id": *f.CustomerID})
	}
	if f.OrderID != nil {
		where = append(where, sq.Eq{"order_id": *f.OrderID})
	}
	if f.Tag != "" {
		where = append(where, sq.Expr("? = ANY(tags)", f.Tag))
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.Lt{"created_at": *f.To})
	}
	return where
}

func insertTransaction(ctx context.Context, q querier, t *repository.InventoryTransaction) error {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return q.QueryRow(ctx,
		`INSERT INTO inventory_transactions (
			type, reason, product_id, quantity, unit_price, discount_percent, total_price,
			product_name, product_image, product_category_name, product_color, product_size,
			stock_after, user_id, customer_id, order_id, tags, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id, created_at`,
		string(t.Type), string(t.Reason), t.ProductID, t.Quantity, t.UnitPrice, t.DiscountPercent, t.TotalPrice,
		t.Snapshot.Name, t.Snapshot.Image, t.Snapshot.CategoryName, t.Snapshot.Color, t.Snapshot.Size,
		t.StockAfter, t.UserID, t.CustomerID, t.OrderID, tags, t.Note).
		Scan(&t.ID, &t.CreatedAt)
}

func scanTransaction(row pgx.Row) (repository.InventoryTransaction, error) {
	var t repository.InventoryTransaction
	var typ, reason string
	err := row.Scan(&t.ID, &typ, &reason, &t.ProductID, &t.Quantity, &t.UnitPrice, &t.DiscountPercent, &t.TotalPrice,
		&t.Snapshot.Name, &t.Snapshot.Image, &t.Snapshot.CategoryName, &t.Snapshot.Color, &t.Snapshot.Size,
		&t.StockAfter, &t.UserID, &t.CustomerID, &t.OrderID, &t.Tags, &t.Note, &t.CreatedAt)
	t.Type = repository.TransactionType(typ)
	t.Reason = repository.Reason(reason)
	return t, err
}
