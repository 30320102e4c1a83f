package repository

import (
	"context"
	"time"
)

// Attachment метаданные загруженного файла; содержимое лежит в объектном хранилище
type Attachment struct {
	ID          string
	Key         string
	FileName    string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=AttachmentRepository --dir=. --output=./mocks --outpkg=mocks

// AttachmentRepository хранилище метаданных вложений
type AttachmentRepository interface {
	Create(ctx context.Context, a Attachment) error
	GetByID(ctx context.Context, id string) (Attachment, error)
	// Delete возвращает ErrConflict, если вложение используется как изображение товара
	Delete(ctx context.Context, id string) error
}
