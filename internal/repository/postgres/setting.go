package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

// SettingRepository реализует repository.SettingRepository используя PostgreSQL
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository создаёт новый PostgreSQL репозиторий настроек
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func (r *SettingRepository) List(ctx context.Context) ([]repository.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, type, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]repository.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Get(ctx context.Context, key string) (repository.Setting, error) {
	s, err := scanSetting(r.pool.QueryRow(ctx,
		`SELECT key, type, value, description, updated_at FROM settings WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Setting{}, repository.ErrNotFound
		}
		return repository.Setting{}, err
	}
	return s, nil
}

// Upsert создаёт или обновляет настройку; пустое описание не затирает существующее
func (r *SettingRepository) Upsert(ctx context.Context, s repository.Setting) (repository.Setting, error) {
	return scanSetting(r.pool.QueryRow(ctx,
		`INSERT INTO settings (key, type, value, description)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET
		   type = EXCLUDED.type,
		   value = EXCLUDED.value,
		   description = COALESCE(NULLIF(EXCLUDED.description, ''), settings.description),
		   updated_at = now()
		 RETURNING key, type, value, description, updated_at`,
		s.Key, string(s.Type), s.Value, s.Description))
}

func scanSetting(row pgx.Row) (repository.Setting, error) {
	var s repository.Setting
	var typ string
	err := row.Scan(&s.Key, &typ, &s.Value, &s.Description, &s.UpdatedAt)
	s.Type = repository.SettingType(typ)
	return s, err
}
