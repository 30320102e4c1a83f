package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
	repoMocks "github.com/shestoi/GoShop/internal/repository/mocks"
	"github.com/shestoi/GoShop/internal/service/mocks"
)

func newTestAttachmentService(t *testing.T) (*AttachmentService, *repoMocks.AttachmentRepository, *mocks.ObjectStorage) {
	repo := repoMocks.NewAttachmentRepository(t)
	storage := mocks.NewObjectStorage(t)
	svc := NewAttachmentService(zap.NewNop(), repo, storage, quietAuditor(t), 1024)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc, repo, storage
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores object and metadata", func(t *testing.T) {
		svc, repo, storage := newTestAttachmentService(t)
		var stored []byte
		storage.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "attachments/2024/03/") && strings.HasSuffix(key, ".png")
		}), mock.Anything, int64(4), "image/png").Return(func(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
			var err error
			stored, err = io.ReadAll(r)
			return err
		}).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(a repository.Attachment) bool {
			return a.FileName == "photo.PNG" && a.UploadedBy == "admin-1" && a.Size == 4
		})).Return(nil).Once()

		a, err := svc.Upload(ctx, UploadInput{
			Actor:       adminActor,
			FileName:    "../../photo.PNG",
			ContentType: "image/png",
			Size:        4,
			Body:        bytes.NewReader([]byte("abcdefgh")),
		})
		require.NoError(t, err)
		require.Equal(t, "attachments/2024/03/"+a.ID+".png", a.Key)
		require.Equal(t, []byte("abcd"), stored)
	})

	t.Run("removes object when metadata fails", func(t *testing.T) {
		svc, repo, storage := newTestAttachmentService(t)
		storage.On("Put", ctx, mock.Anything, mock.Anything, int64(3), "application/pdf").Return(nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()
		storage.On("Delete", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Upload(ctx, UploadInput{
			Actor:       adminActor,
			FileName:    "invoice.pdf",
			ContentType: "application/pdf",
			Size:        3,
			Body:        strings.NewReader("pdf"),
		})
		require.Error(t, err)
	})

	t.Run("rejects content type", func(t *testing.T) {
		svc, _, _ := newTestAttachmentService(t)
		_, err := svc.Upload(ctx, UploadInput{Actor: adminActor, FileName: "a.exe", ContentType: "application/x-msdownload", Size: 1, Body: strings.NewReader("x")})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		svc, _, _ := newTestAttachmentService(t)
		_, err := svc.Upload(ctx, UploadInput{Actor: adminActor, FileName: "a.png", ContentType: "image/png", Size: 2048, Body: strings.NewReader("x")})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("requires admin", func(t *testing.T) {
		svc, _, _ := newTestAttachmentService(t)
		_, err := svc.Upload(ctx, UploadInput{Actor: userActor, FileName: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAttachmentService_Open(t *testing.T) {
	ctx := context.Background()
	svc, repo, storage := newTestAttachmentService(t)
	const id = "0f8fad5b-d9cb-469f-a165-70867728950e"

	repo.On("GetByID", ctx, id).Return(repository.Attachment{ID: id, Key: "attachments/2024/03/x.png", ContentType: "image/png"}, nil).Once()
	storage.On("Get", ctx, "attachments/2024/03/x.png").Return(io.NopCloser(strings.NewReader("png")), nil).Once()

	a, body, err := svc.Open(ctx, id)
	require.NoError(t, err)
	defer body.Close()
	require.Equal(t, "image/png", a.ContentType)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "png", string(data))

	_, _, err = svc.Open(ctx, "not-a-uuid")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAttachmentService_Delete_InUse(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestAttachmentService(t)
	const id = "0f8fad5b-d9cb-469f-a165-70867728950e"

	repo.On("GetByID", ctx, id).Return(repository.Attachment{ID: id, Key: "k"}, nil).Once()
	repo.On("Delete", ctx, id).Return(repository.ErrConflict).Once()

	err := svc.Delete(ctx, adminActor, id)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestAllowedContentType(t *testing.T) {
	require.True(t, AllowedContentType("image/jpeg"))
	require.True(t, AllowedContentType("application/pdf"))
	require.True(t, AllowedContentType("image/svg+xml; charset=utf-8"))
	require.False(t, AllowedContentType("text/html"))
	require.False(t, AllowedContentType(""))
}
