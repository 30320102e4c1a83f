package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

// UserRepository реализует repository.UserRepository используя PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository создаёт новый PostgreSQL репозиторий пользователей
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser создаёт пользователя; пустой ID заменяется новым UUID
func (r *UserRepository) CreateUser(ctx context.Context, user repository.User) error {
	var userID uuid.UUID
	var err error

	if user.ID == "" {
		userID = uuid.New()
	} else {
		userID, err = uuid.Parse(user.ID)
		if err != nil {
			return err
		}
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (id, phone, role, created_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, user.Phone, string(user.Role), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByPhone получает пользователя по нормализованному телефону
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (repository.User, error) {
	return r.getOne(ctx, `SELECT id, phone, role, created_at FROM users WHERE phone = $1`, phone)
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (repository.User, error) {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return repository.User{}, repository.ErrNotFound
	}
	return r.getOne(ctx, `SELECT id, phone, role, created_at FROM users WHERE id = $1`, parsed)
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role repository.Role) error {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, parsed, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (repository.User, error) {
	var user repository.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Phone, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.User{}, repository.ErrNotFound
		}
		return repository.User{}, err
	}
	user.Role = repository.Role(role)
	return user, nil
}
