package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

const productColumns = `p.id, p.name, p.description, p.category_id, COALESCE(c.name, ''), p.color, p.size,
	p.price, p.stock, p.image_id::text, p.active, p.created_at, p.updated_at`

const productFrom = `products p LEFT JOIN categories c ON c.id = p.category_id`

// CatalogRepository реализует repository.CatalogRepository используя PostgreSQL
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository создаёт новый PostgreSQL репозиторий каталога
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (repository.Category, error) {
	c := repository.Category{Name: name}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, name).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.Category{}, repository.ErrAlreadyExists
		}
		return repository.Category{}, err
	}
	return c, nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id int64, name string) (repository.Category, error) {
	c := repository.Category{ID: id, Name: name}
	err := r.pool.QueryRow(ctx,
		`UPDATE categories SET name = $2 WHERE id = $1 RETURNING created_at`, id, name).
		Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Category{}, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repository.Category{}, repository.ErrAlreadyExists
		}
		return repository.Category{}, err
	}
	return c, nil
}

// DeleteCategory удаляет категорию; FK RESTRICT со стороны products даёт ErrConflict
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (repository.Category, error) {
	var c repository.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Category{}, repository.ErrNotFound
		}
		return repository.Category{}, err
	}
	return c, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]repository.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]repository.Category, 0)
	for rows.Next() {
		var c repository.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p repository.Product) (repository.Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, category_id, color, size, price, stock, image_id, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid, $9)
		 RETURNING id`,
		p.Name, p.Description, p.CategoryID, p.Color, p.Size, p.Price, p.Stock, p.ImageID, p.Active).
		Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	return r.GetProduct(ctx, id)
}

// UpdateProduct обновляет всё, кроме stock
func (r *CatalogRepository) UpdateProduct(ctx context.Context, p repository.Product) (repository.Product, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, category_id = $4, color = $5, size = $6,
		     price = $7, image_id = $8::uuid, active = $9, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.CategoryID, p.Color, p.Size, p.Price, p.ImageID, p.Active)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return repository.Product{}, repository.ErrNotFound
	}
	return r.GetProduct(ctx, p.ID)
}

// DeleteProduct удаляет товар; в журнале product_id становится NULL (ON DELETE SET NULL)
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (repository.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM `+productFrom+` WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	return p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, f repository.ProductFilter) ([]repository.Product, int64, error) {
	where := sq.And{}
	if f.CategoryID != nil {
		where = append(where, sq.Eq{"p.category_id": *f.CategoryID})
	}
	if f.Active != nil {
		where = append(where, sq.Eq{"p.active": *f.Active})
	}
	if f.Search != "" {
		where = append(where, sq.ILike{"p.name": "%" + escapeLike(f.Search) + "%"})
	}
	if f.LowStockMax != nil {
		where = append(where, sq.LtOrEq{"p.stock": *f.LowStockMax})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From(productFrom).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query, args, err := psql.Select(productColumns).From(productFrom).Where(where).
		OrderBy("p.id DESC").
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

	products := make([]repository.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *CatalogRepository) CountLowStock(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE active AND stock <= $1`, threshold).Scan(&n)
	return n, err
}

func scanProduct(row pgx.Row) (repository.Product, error) {
	var p repository.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName, &p.Color, &p.Size,
		&p.Price, &p.Stock, &p.ImageID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// lockProducts блокирует строки товаров в порядке возрастания id (SELECT ... FOR UPDATE)
func lockProducts(ctx context.Context, q querier, ids []int64) (map[int64]repository.Product, error) {
	rows, err := q.Query(ctx,
		`SELECT `+productColumns+` FROM `+productFrom+`
		 WHERE p.id = ANY($1)
		 ORDER BY p.id
		 FOR UPDATE OF p`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]repository.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func updateStock(ctx context.Context, q querier, productID, stock int64) error {
	_, err := q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	return err
}
