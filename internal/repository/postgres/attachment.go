package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/GoShop/internal/repository"
)

// AttachmentRepository реализует repository.AttachmentRepository используя PostgreSQL
type AttachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository создаёт новый PostgreSQL репозиторий вложений
func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

func (r *AttachmentRepository) Create(ctx context.Context, a repository.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attachments (id, object_key, file_name, content_type, size, uploaded_by, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Key, a.FileName, a.ContentType, a.Size, a.UploadedBy, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (repository.Attachment, error) {
	var a repository.Attachment
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, object_key, file_name, content_type, size, uploaded_by, created_at
		 FROM attachments
		 WHERE id = $1::uuid`, id).
		Scan(&a.ID, &a.Key, &a.FileName, &a.ContentType, &a.Size, &a.UploadedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return repository.Attachment{}, repository.ErrNotFound
		}
		return repository.Attachment{}, err
	}
	return a, nil
}

// Delete удаляет метаданные; если файл является изображением товара, FK даёт ErrConflict
func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1::uuid`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrConflict
		}
		if isInvalidText(err) {
			return repository.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
