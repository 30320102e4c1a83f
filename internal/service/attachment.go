package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

// AttachmentService загрузка файлов в объектное хранилище
type AttachmentService struct {
	logger  *zap.Logger
	repo    repository.AttachmentRepository
	storage ObjectStorage
	auditor Auditor
	maxSize int64
	now     func() time.Time
}

// NewAttachmentService создаёт новый экземпляр AttachmentService
func NewAttachmentService(
	logger *zap.Logger,
	repo repository.AttachmentRepository,
	storage ObjectStorage,
	auditor Auditor,
	maxSize int64,
) *AttachmentService {
	return &AttachmentService{
		logger:  logger,
		repo:    repo,
		storage: storage,
		auditor: auditor,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// UploadInput загружаемый файл; Size известен из multipart заголовка
type UploadInput struct {
	Actor       Actor
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AllowedContentType image/* и application/pdf
func AllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// Upload сохраняет содержимое по ключу attachments/YYYY/MM/<uuid><ext> и пишет метаданные
func (s *AttachmentService) Upload(ctx context.Context, input UploadInput) (repository.Attachment, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return repository.Attachment{}, err
	}
	if input.Size <= 0 {
		return repository.Attachment{}, invalid("file", "is empty")
	}
	if input.Size > s.maxSize {
		return repository.Attachment{}, invalid("file", "must be at most %d bytes", s.maxSize)
	}
	if !AllowedContentType(input.ContentType) {
		return repository.Attachment{}, invalid("file", "content type %q is not allowed", input.ContentType)
	}
	name := path.Base(filepath.ToSlash(strings.TrimSpace(input.FileName)))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}

	id := uuid.NewString()
	now := s.now().UTC()
	key := fmt.Sprintf("attachments/%04d/%02d/%s%s", now.Year(), int(now.Month()), id, strings.ToLower(path.Ext(name)))

	// читаем не больше заявленного размера
	body := io.LimitReader(input.Body, input.Size)
	if err := s.storage.Put(ctx, key, body, input.Size, input.ContentType); err != nil {
		return repository.Attachment{}, fmt.Errorf("put object: %w", err)
	}

	a := repository.Attachment{
		ID:          id,
		Key:         key,
		FileName:    name,
		ContentType: input.ContentType,
		Size:        input.Size,
		UploadedBy:  input.Actor.UserID,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphan object", zap.String("key", key), zap.Error(delErr))
		}
		return repository.Attachment{}, fmt.Errorf("create attachment: %w", err)
	}

	s.logger.Info("attachment uploaded",
		zap.String("attachment_id", id),
		zap.String("key", key),
		zap.Int64("size", input.Size),
	)
	s.auditor.Record(ctx, input.Actor.UserID, "attachment.upload", "attachment", id, map[string]any{
		"file_name":    name,
		"content_type": input.ContentType,
		"size":         input.Size,
	})
	return a, nil
}

// Open возвращает метаданные и поток содержимого; вызывающий закрывает поток
func (s *AttachmentService) Open(ctx context.Context, id string) (repository.Attachment, io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return repository.Attachment{}, nil, fmt.Errorf("attachment %s: %w", id, repository.ErrNotFound)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Attachment{}, nil, fmt.Errorf("get attachment: %w", err)
	}
	body, err := s.storage.Get(ctx, a.Key)
	if err != nil {
		return repository.Attachment{}, nil, fmt.Errorf("get object: %w", err)
	}
	return a, body, nil
}

// Delete удаляет метаданные, затем объект; ErrConflict если файл является изображением товара
func (s *AttachmentService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("attachment %s: %w", id, repository.ErrNotFound)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get attachment: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if err := s.storage.Delete(ctx, a.Key); err != nil {
		s.logger.Warn("failed to delete object", zap.String("key", a.Key), zap.Error(err))
	}
	s.auditor.Record(ctx, actor.UserID, "attachment.delete", "attachment", id, map[string]any{"key": a.Key})
	return nil
}
