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

const customerColumns = `id, name, phone, email, note, created_at, updated_at`

// CustomerRepository реализует repository.CustomerRepository используя PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository создаёт новый PostgreSQL репозиторий покупателей
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c repository.Customer) (repository.Customer, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, phone, email, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Email, c.Note).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.Customer{}, repository.ErrAlreadyExists
		}
		return repository.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c repository.Customer) (repository.Customer, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE customers SET name = $2, phone = $3, email = $4, note = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Note).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Customer{}, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repository.Customer{}, repository.ErrAlreadyExists
		}
		return repository.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (repository.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Customer{}, repository.ErrNotFound
		}
		return repository.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context, f repository.CustomerFilter) ([]repository.Customer, int64, error) {
	where := sq.And{}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		where = append(where, sq.Or{sq.ILike{"name": pattern}, sq.Like{"phone": pattern}})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("customers").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query, args, err := psql.Select(customerColumns).From("customers").Where(where).
		OrderBy("name", "id").
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

	customers := make([]repository.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func scanCustomer(row pgx.Row) (repository.Customer, error) {
	var c repository.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
